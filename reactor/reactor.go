// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Descriptor registry and wait/dispatch loop.

package reactor

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/nsock/api"
)

// Callback is invoked on the loop goroutine with the ready descriptor and
// the delivered readiness bits.
type Callback func(fd int, ev api.Events)

// Reactor multiplexes descriptors onto user callbacks.
type Reactor struct {
	p           poller
	callbacks   map[int]Callback
	events      []event // reused across waits; grown, never shrunk
	waitTimeout time.Duration
	log         *zap.Logger

	// descriptors deregistered while the current batch is dispatched; their
	// remaining events are dropped even if the number is registered again
	dispatching bool
	stale       map[int]struct{}
}

// New creates a reactor backed by the platform multiplexer. Failure to
// create the multiplexer is not recoverable for the caller.
func New(opts ...Option) (*Reactor, error) {
	p, err := newPoller()
	if err != nil {
		return nil, fmt.Errorf("reactor: %w", err)
	}
	return newReactor(p, newOptions(opts)), nil
}

func newReactor(p poller, o options) *Reactor {
	return &Reactor{
		p:           p,
		callbacks:   make(map[int]Callback),
		stale:       make(map[int]struct{}),
		events:      make([]event, o.eventBuffer),
		waitTimeout: o.waitTimeout,
		log:         o.log.Named("reactor"),
	}
}

// Register starts watching fd for the readiness in interest and routes its
// events to cb. Registering an already watched descriptor is a logged no-op
// that keeps the original callback. When the multiplexer refuses the
// descriptor nothing is recorded.
func (r *Reactor) Register(fd int, interest api.Events, cb Callback) error {
	if fd < 0 || cb == nil {
		return fmt.Errorf("reactor: register fd %d: %w", fd, api.ErrInvalidArgument)
	}
	if _, ok := r.callbacks[fd]; ok {
		r.log.Warn("fd is already being monitored", zap.Int("fd", fd))
		return nil
	}
	if err := r.p.add(fd, interest); err != nil {
		r.log.Warn("failed to monitor fd", zap.Int("fd", fd), zap.Error(err))
		return fmt.Errorf("reactor: register fd %d: %w", fd, err)
	}
	r.callbacks[fd] = cb
	return nil
}

// Deregister stops watching fd. Removing a descriptor that is not watched
// is a logged no-op. The change takes effect before the next wait.
func (r *Reactor) Deregister(fd int) error {
	if _, ok := r.callbacks[fd]; !ok {
		r.log.Warn("fd is not being monitored", zap.Int("fd", fd))
		return nil
	}
	if err := r.p.del(fd); err != nil {
		r.log.Warn("failed to stop monitoring fd", zap.Int("fd", fd), zap.Error(err))
		return fmt.Errorf("reactor: deregister fd %d: %w", fd, err)
	}
	delete(r.callbacks, fd)
	if r.dispatching {
		r.stale[fd] = struct{}{}
	}
	return nil
}

// Registered reports whether fd is currently watched.
func (r *Reactor) Registered(fd int) bool {
	_, ok := r.callbacks[fd]
	return ok
}

// Len returns the number of watched descriptors.
func (r *Reactor) Len() int { return len(r.callbacks) }

// Poll runs one wait/dispatch iteration and returns the number of callbacks
// invoked. With nothing registered it returns immediately instead of
// blocking.
func (r *Reactor) Poll(timeout time.Duration) (int, error) {
	if len(r.callbacks) == 0 {
		return 0, nil
	}
	if n := len(r.callbacks); n > len(r.events) {
		r.events = make([]event, n)
	}

	n, err := r.p.wait(r.events, timeout)
	if err != nil {
		return 0, fmt.Errorf("reactor: %w", err)
	}

	r.dispatching = true
	defer func() {
		r.dispatching = false
		clear(r.stale)
	}()

	dispatched := 0
	for i := 0; i < n; i++ {
		ev := r.events[i]
		// Looked up per event: an earlier callback in this batch may have
		// deregistered the descriptor, and its number may already be reused.
		if _, ok := r.stale[ev.fd]; ok {
			r.log.Debug("dropping event for deregistered fd", zap.Int("fd", ev.fd), zap.Stringer("events", ev.events))
			continue
		}
		cb, ok := r.callbacks[ev.fd]
		if !ok {
			r.log.Warn("wait returned unknown fd", zap.Int("fd", ev.fd), zap.Stringer("events", ev.events))
			continue
		}
		r.dispatch(cb, ev)
		dispatched++
	}
	return dispatched, nil
}

// dispatch invokes one callback, keeping the loop alive if it panics.
func (r *Reactor) dispatch(cb Callback, ev event) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("callback panicked", zap.Int("fd", ev.fd), zap.Any("panic", v))
		}
	}()
	cb(ev.fd, ev.events)
}

// RunUntil waits and dispatches until stop is observed true at the top of
// an iteration. Wait failures are logged and count as an empty iteration.
// A callback that is running when stop flips always completes first.
func (r *Reactor) RunUntil(stop *atomic.Bool) {
	for !stop.Load() {
		if _, err := r.Poll(r.waitTimeout); err != nil {
			r.log.Warn("wait failed", zap.Error(err))
		}
	}
	r.log.Debug("loop exiting")
}

// Close releases the multiplexer. Descriptors still registered at this
// point are a caller bug; they are reported, not closed.
func (r *Reactor) Close() error {
	if n := len(r.callbacks); n > 0 {
		r.log.Warn("closing with descriptors still monitored", zap.Int("count", n))
	}
	if err := r.p.close(); err != nil {
		return fmt.Errorf("reactor: close: %w", err)
	}
	return nil
}
