// File: reactor/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultWaitTimeout bounds each wait so RunUntil can re-check its stop
	// flag. No periodic work is scheduled on it.
	DefaultWaitTimeout = time.Second
	// DefaultEventBuffer is the initial size of the event result buffer.
	DefaultEventBuffer = 1024
)

type options struct {
	log         *zap.Logger
	waitTimeout time.Duration
	eventBuffer int
}

// Option configures a Reactor.
type Option func(*options)

// WithLogger sets the logger used for registration anomalies.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithWaitTimeout sets how long RunUntil blocks per iteration.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithEventBuffer sets the initial event buffer size.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		log:         zap.NewNop(),
		waitTimeout: DefaultWaitTimeout,
		eventBuffer: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
