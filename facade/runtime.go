//go:build linux
// +build linux

// File: facade/runtime.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime wires one reactor with logging, metrics, debug probes and a
// receive buffer pool built from a control.Config, and creates sockets and
// command servers bound to them. A program owns exactly one Runtime and
// drives it from a single goroutine.

package facade

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
	"github.com/momentics/nsock/cmdserver"
	"github.com/momentics/nsock/control"
	"github.com/momentics/nsock/pool"
	"github.com/momentics/nsock/reactor"
	"github.com/momentics/nsock/transport/tcp"
)

// Runtime is the composition root of an nsock program.
type Runtime struct {
	cfg      *control.Config
	log      *zap.Logger
	reactor  *reactor.Reactor
	registry *prometheus.Registry
	metrics  *control.Metrics
	probes   *control.DebugProbes
	recvPool *pool.BytePool

	stop   atomic.Bool
	closed bool
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger replaces the logger built from the config.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) { rt.log = l }
}

// New builds a runtime from cfg; nil selects control.DefaultConfig.
func New(cfg *control.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{cfg: cfg}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.log == nil {
		log, err := control.NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		rt.log = log
	}

	r, err := reactor.New(
		reactor.WithLogger(rt.log),
		reactor.WithWaitTimeout(cfg.Reactor.WaitTimeout),
		reactor.WithEventBuffer(cfg.Reactor.EventBuffer),
	)
	if err != nil {
		return nil, err
	}
	rt.reactor = r

	rt.registry = prometheus.NewRegistry()
	rt.metrics, err = control.NewMetrics(rt.registry)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	rt.recvPool = pool.NewBytePool(cfg.Socket.RecvBuffer)

	rt.probes = control.NewDebugProbes()
	control.RegisterPlatformProbes(rt.probes)
	rt.probes.RegisterProbe("reactor.fds", func() any { return r.Len() })

	return rt, nil
}

// Config returns the configuration the runtime was built from.
func (rt *Runtime) Config() *control.Config { return rt.cfg }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *zap.Logger { return rt.log }

// Reactor returns the event loop.
func (rt *Runtime) Reactor() *reactor.Reactor { return rt.reactor }

// Registry returns the Prometheus registry holding the socket metrics.
func (rt *Runtime) Registry() *prometheus.Registry { return rt.registry }

// Metrics returns the socket collectors.
func (rt *Runtime) Metrics() *control.Metrics { return rt.metrics }

// Probes returns the debug probe registry.
func (rt *Runtime) Probes() *control.DebugProbes { return rt.probes }

func (rt *Runtime) socketOptions() []tcp.Option {
	return []tcp.Option{
		tcp.WithLogger(rt.log),
		tcp.WithBytePool(rt.recvPool),
		tcp.WithSendBufferSize(rt.cfg.Socket.SendBuffer),
		tcp.WithBacklog(rt.cfg.Socket.Backlog),
		tcp.WithObserver(metricsObserver{rt.metrics}),
	}
}

// Listen opens a listening socket on the runtime reactor.
func (rt *Runtime) Listen(host string, port uint16, onConnect tcp.ConnectFunc) (*tcp.Socket, error) {
	return tcp.Listen(rt.reactor, host, port, onConnect, rt.socketOptions()...)
}

// Connect opens a client socket on the runtime reactor.
func (rt *Runtime) Connect(host string, port uint16, onRecv tcp.RecvFunc, onError tcp.ErrorFunc) (*tcp.Socket, error) {
	return tcp.Connect(rt.reactor, host, port, onRecv, onError, rt.socketOptions()...)
}

// Commands creates a command server on the runtime reactor, reading
// standard input unless opts say otherwise.
func (rt *Runtime) Commands(opts ...cmdserver.Option) *cmdserver.Server {
	opts = append([]cmdserver.Option{cmdserver.WithLogger(rt.log)}, opts...)
	return cmdserver.New(rt.reactor, opts...)
}

// Run drives the reactor on the calling goroutine until Stop.
func (rt *Runtime) Run() {
	rt.log.Info("event loop started")
	rt.reactor.RunUntil(&rt.stop)
	rt.log.Info("event loop stopped")
}

// Stop makes Run return after the current iteration. Safe from any goroutine.
func (rt *Runtime) Stop() { rt.stop.Store(true) }

// Close releases the reactor and flushes the logger. Sockets still open are
// not ended. Calling Close again is a no-op.
func (rt *Runtime) Close() error {
	if rt.closed {
		return nil
	}
	rt.closed = true
	rt.Stop()
	err := rt.reactor.Close()
	if serr := rt.log.Sync(); serr != nil && !errors.Is(serr, unix.EINVAL) && !errors.Is(serr, unix.ENOTTY) {
		err = multierr.Append(err, serr)
	}
	return err
}

// Shutdown implements api.GracefulShutdown by delegating to Close.
func (rt *Runtime) Shutdown() error { return rt.Close() }

// metricsObserver feeds socket activity into the Prometheus collectors.
type metricsObserver struct{ m *control.Metrics }

func (o metricsObserver) Accepted(*tcp.Socket) {
	o.m.Accepted.Inc()
	o.m.Active.Inc()
}

func (o metricsObserver) Connected(*tcp.Socket) { o.m.Active.Inc() }

func (o metricsObserver) Closed(*tcp.Socket) { o.m.Active.Dec() }

func (o metricsObserver) Received(_ *tcp.Socket, n int) { o.m.BytesReceived.Add(float64(n)) }

func (o metricsObserver) Sent(_ *tcp.Socket, n int) { o.m.BytesSent.Add(float64(n)) }

func (o metricsObserver) Failed(_ *tcp.Socket, err error) { o.m.ObserveError(errorKind(err)) }

func errorKind(err error) string {
	var errno unix.Errno
	switch {
	case errors.Is(err, io.EOF):
		return control.ErrorKindEOF
	case errors.As(err, &errno):
		return control.ErrorKindOS
	default:
		return control.ErrorKindOther
	}
}
