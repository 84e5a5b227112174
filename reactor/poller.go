// File: reactor/poller.go
// Author: momentics <momentics@gmail.com>
//
// OS multiplexer backend contract.

package reactor

import (
	"time"

	"github.com/momentics/nsock/api"
)

// event is one readiness notification in backend-neutral form.
type event struct {
	fd     int
	events api.Events
}

// poller is the OS-specific half of the reactor.
type poller interface {
	add(fd int, interest api.Events) error
	del(fd int) error
	// wait fills out with at most len(out) events. A negative timeout
	// blocks indefinitely. Interrupted waits report zero events.
	wait(out []event, timeout time.Duration) (int, error)
	close() error
}
