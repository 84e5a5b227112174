package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugProbesRender(t *testing.T) {
	dp := NewDebugProbes()
	assert.Empty(t, dp.Render())

	calls := 0
	dp.RegisterProbe("sockets", func() any { calls++; return 3 })
	dp.RegisterProbe("reactor.fds", func() any { return 4 })

	assert.Equal(t, map[string]any{"sockets": 3, "reactor.fds": 4}, dp.DumpState())
	assert.Equal(t, "reactor.fds: 4\nsockets: 3", dp.Render())
	assert.Equal(t, 2, calls)

	dp.RegisterProbe("sockets", func() any { return 0 })
	assert.Equal(t, "reactor.fds: 4\nsockets: 0", dp.Render())
}
