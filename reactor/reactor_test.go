package reactor

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/momentics/nsock/api"
)

type fakePoller struct {
	added     map[int]api.Events
	addErr    error
	delErr    error
	waitSizes []int
	waitFn    func(out []event) (int, error)
	closed    bool
}

func newFakePoller() *fakePoller {
	return &fakePoller{added: make(map[int]api.Events)}
}

func (f *fakePoller) add(fd int, interest api.Events) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added[fd] = interest
	return nil
}

func (f *fakePoller) del(fd int) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.added, fd)
	return nil
}

func (f *fakePoller) wait(out []event, _ time.Duration) (int, error) {
	f.waitSizes = append(f.waitSizes, len(out))
	if f.waitFn == nil {
		return 0, nil
	}
	return f.waitFn(out)
}

func (f *fakePoller) close() error {
	f.closed = true
	return nil
}

func deliver(evs ...event) func(out []event) (int, error) {
	return func(out []event) (int, error) {
		return copy(out, evs), nil
	}
}

func newTestReactor(t *testing.T, opts ...Option) (*Reactor, *fakePoller, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	fp := newFakePoller()
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return newReactor(fp, newOptions(opts)), fp, logs
}

func nop(int, api.Events) {}

func TestRegisterDuplicateKeepsFirstCallback(t *testing.T) {
	r, fp, logs := newTestReactor(t)

	var first, second int
	require.NoError(t, r.Register(7, api.EventRead, func(int, api.Events) { first++ }))
	require.NoError(t, r.Register(7, api.EventWrite, func(int, api.Events) { second++ }))

	assert.Equal(t, api.EventRead, fp.added[7], "duplicate must not touch the multiplexer")
	assert.Equal(t, 1, logs.FilterMessage("fd is already being monitored").Len())

	fp.waitFn = deliver(event{fd: 7, events: api.EventRead})
	n, err := r.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, first)
	assert.Zero(t, second)
}

func TestRegisterFailureLeavesNoTrace(t *testing.T) {
	r, fp, _ := newTestReactor(t)
	fp.addErr = errors.New("boom")

	err := r.Register(3, api.EventRead, nop)
	require.Error(t, err)
	assert.False(t, r.Registered(3))
	assert.Zero(t, r.Len())
}

func TestRegisterRejectsInvalidArguments(t *testing.T) {
	r, _, _ := newTestReactor(t)
	assert.ErrorIs(t, r.Register(-1, api.EventRead, nop), api.ErrInvalidArgument)
	assert.ErrorIs(t, r.Register(4, api.EventRead, nil), api.ErrInvalidArgument)
}

func TestDeregisterUnknownIsNoop(t *testing.T) {
	r, _, logs := newTestReactor(t)
	require.NoError(t, r.Deregister(42))
	assert.Equal(t, 1, logs.FilterMessage("fd is not being monitored").Len())
}

func TestDeregisterFailureKeepsMapping(t *testing.T) {
	r, fp, _ := newTestReactor(t)
	require.NoError(t, r.Register(5, api.EventRead, nop))
	fp.delErr = errors.New("ebadf")
	require.Error(t, r.Deregister(5))
	assert.True(t, r.Registered(5))
}

func TestPollSkipsWaitWhenNothingRegistered(t *testing.T) {
	r, fp, _ := newTestReactor(t)
	n, err := r.Poll(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, fp.waitSizes)
}

func TestPollSkipsUnknownDescriptor(t *testing.T) {
	r, fp, logs := newTestReactor(t)
	var got []api.Events
	require.NoError(t, r.Register(1, api.EventRead, func(_ int, ev api.Events) { got = append(got, ev) }))

	fp.waitFn = deliver(
		event{fd: 99, events: api.EventRead},
		event{fd: 1, events: api.EventRead | api.EventWrite},
	)
	n, err := r.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []api.Events{api.EventRead | api.EventWrite}, got)
	assert.Equal(t, 1, logs.FilterMessage("wait returned unknown fd").Len())
}

func TestPollHonoursDeregistrationWithinBatch(t *testing.T) {
	r, fp, _ := newTestReactor(t)
	var secondCalled bool
	require.NoError(t, r.Register(1, api.EventRead, func(int, api.Events) {
		require.NoError(t, r.Deregister(2))
	}))
	require.NoError(t, r.Register(2, api.EventRead, func(int, api.Events) { secondCalled = true }))

	fp.waitFn = deliver(event{fd: 1, events: api.EventRead}, event{fd: 2, events: api.EventRead})
	n, err := r.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, secondCalled)
}

func TestEventBufferGrowsAndNeverShrinks(t *testing.T) {
	r, fp, _ := newTestReactor(t, WithEventBuffer(2))
	for fd := 10; fd < 13; fd++ {
		require.NoError(t, r.Register(fd, api.EventRead, nop))
	}
	_, err := r.Poll(0)
	require.NoError(t, err)

	require.NoError(t, r.Deregister(10))
	require.NoError(t, r.Deregister(11))
	_, err = r.Poll(0)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3}, fp.waitSizes)
}

func TestPollRecoversCallbackPanic(t *testing.T) {
	r, fp, logs := newTestReactor(t)
	var after bool
	require.NoError(t, r.Register(1, api.EventRead, func(int, api.Events) { panic("bad callback") }))
	require.NoError(t, r.Register(2, api.EventRead, func(int, api.Events) { after = true }))

	fp.waitFn = deliver(event{fd: 1, events: api.EventRead}, event{fd: 2, events: api.EventRead})
	n, err := r.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, after)
	assert.Equal(t, 1, logs.FilterMessage("callback panicked").Len())
}

func TestRunUntilStopsAfterCallbackCompletes(t *testing.T) {
	r, fp, _ := newTestReactor(t)
	var stop atomic.Bool
	calls := 0
	require.NoError(t, r.Register(1, api.EventRead, func(int, api.Events) {
		calls++
		if calls == 3 {
			stop.Store(true)
		}
	}))
	fp.waitFn = deliver(event{fd: 1, events: api.EventRead})

	r.RunUntil(&stop)
	assert.Equal(t, 3, calls)
	assert.Len(t, fp.waitSizes, 3)
}

func TestRunUntilSurvivesWaitErrors(t *testing.T) {
	r, fp, logs := newTestReactor(t)
	var stop atomic.Bool
	require.NoError(t, r.Register(1, api.EventRead, nop))

	iterations := 0
	fp.waitFn = func([]event) (int, error) {
		iterations++
		if iterations == 4 {
			stop.Store(true)
		}
		return 0, errors.New("transient")
	}

	r.RunUntil(&stop)
	assert.Equal(t, 4, iterations)
	assert.Equal(t, 4, logs.FilterMessage("wait failed").Len())
}

func TestCloseReportsLeftoverDescriptors(t *testing.T) {
	r, fp, logs := newTestReactor(t)
	require.NoError(t, r.Register(1, api.EventRead, nop))
	require.NoError(t, r.Close())
	assert.True(t, fp.closed)
	assert.Equal(t, 1, logs.FilterMessage("closing with descriptors still monitored").Len())
}

func TestPollDropsEventsOfDescriptorReusedWithinBatch(t *testing.T) {
	r, fp, logs := newTestReactor(t)
	var reused int
	require.NoError(t, r.Register(1, api.EventRead, func(int, api.Events) {
		require.NoError(t, r.Deregister(2))
		require.NoError(t, r.Register(2, api.EventRead, func(int, api.Events) { reused++ }))
	}))
	require.NoError(t, r.Register(2, api.EventRead, nop))

	fp.waitFn = deliver(event{fd: 1, events: api.EventRead}, event{fd: 2, events: api.EventError})
	n, err := r.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, reused)
	assert.True(t, r.Registered(2))
	assert.Equal(t, 1, logs.FilterMessage("dropping event for deregistered fd").Len())

	// the stale set only covers the batch it was built in
	fp.waitFn = deliver(event{fd: 2, events: api.EventRead})
	n, err = r.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reused)
}
