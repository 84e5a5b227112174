//go:build linux
// +build linux

// File: transport/tcp/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"go.uber.org/zap"

	"github.com/momentics/nsock/pool"
)

const (
	// DefaultBacklog is the listen(2) backlog.
	DefaultBacklog = 512
	// DefaultRecvBufferSize is the size of the per-socket receive scratch area.
	DefaultRecvBufferSize = 8192
)

var defaultRecvPool = pool.NewBytePool(DefaultRecvBufferSize)

type options struct {
	log        *zap.Logger
	recvPool   *pool.BytePool
	sendBuffer int
	backlog    int
	observer   Observer
}

// Option configures sockets created by Listen and Connect. Options given to
// Listen are inherited by every accepted connection.
type Option func(*options)

// WithLogger sets the socket logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithBytePool sets the pool receive scratch buffers are drawn from.
func WithBytePool(p *pool.BytePool) Option {
	return func(o *options) {
		if p != nil {
			o.recvPool = p
		}
	}
}

// WithSendBufferSize sets the send ring capacity.
func WithSendBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sendBuffer = n
		}
	}
}

// WithObserver sets the activity observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithBacklog sets the listen backlog.
func WithBacklog(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.backlog = n
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		log:        zap.NewNop(),
		recvPool:   defaultRecvPool,
		sendBuffer: pool.DefaultRingCapacity,
		backlog:    DefaultBacklog,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
