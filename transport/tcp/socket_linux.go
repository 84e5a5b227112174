//go:build linux
// +build linux

// File: transport/tcp/socket_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket state, callback slots and teardown.

package tcp

import (
	"errors"
	"net"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
	"github.com/momentics/nsock/internal/transport"
	"github.com/momentics/nsock/pool"
	"github.com/momentics/nsock/reactor"
)

// ID identifies a socket for diagnostics. IDs are unique per process and
// increase monotonically.
type ID uint64

var lastID atomic.Uint64

// ConnectFunc receives a freshly accepted connection. It must bind the
// receive (and usually error) callbacks; nothing is delivered before that.
type ConnectFunc func(s *Socket)

// RecvFunc is offered received bytes and returns how many it consumed.
// data aliases the socket's scratch buffer and is only valid for the call.
type RecvFunc func(s *Socket, data []byte) int

// ErrorFunc reports a socket-fatal condition: an OS error (unix.Errno) or
// io.EOF when the peer closed its write side. It runs at most once per
// socket; later failures are only counted in Stats.
type ErrorFunc func(s *Socket, err error)

// DrainFunc reports that the send buffer went from non-empty to empty.
type DrainFunc func(s *Socket)

// Socket is a non-blocking TCP endpoint bound to a reactor.
//
// While registered, the reactor's callback references the socket, so it
// stays reachable even when its owner drops it. End breaks that edge.
type Socket struct {
	id       ID
	fd       int // -1 once closed
	listener bool
	state    api.SocketState

	r    *reactor.Reactor
	opts *options
	log  *zap.Logger

	localAddr  *net.TCPAddr
	remoteAddr *net.TCPAddr

	onConnect ConnectFunc
	onRecv    RecvFunc
	onError   ErrorFunc
	onDrain   DrainFunc

	// undelivered receive data lives in recvBuf[recvOff : recvOff+recvLen]
	recvBuf []byte
	recvOff int
	recvLen int
	sendBuf *pool.RingBuffer

	err error // first fatal error, reported once

	// loop guards: callbacks may call back into the socket
	receiving bool
	rearm     bool
	writing   bool

	stats counters
}

func newSocket(fd int, r *reactor.Reactor, o *options) *Socket {
	id := ID(lastID.Add(1))
	s := &Socket{
		id:    id,
		fd:    fd,
		state: api.StateActive,
		r:     r,
		opts:  o,
		log:   o.log.With(zap.Uint64("sock", uint64(id)), zap.Int("fd", fd)),
	}
	return s
}

// ID returns the socket identifier.
func (s *Socket) ID() ID { return s.id }

// State returns the lifecycle state.
func (s *Socket) State() api.SocketState { return s.state }

// IsListener reports whether the socket accepts connections.
func (s *Socket) IsListener() bool { return s.listener }

// Fd returns the descriptor, or -1 after End.
func (s *Socket) Fd() int { return s.fd }

// LocalAddr returns the bound address.
func (s *Socket) LocalAddr() *net.TCPAddr { return s.localAddr }

// RemoteAddr returns the peer address; nil for listeners.
func (s *Socket) RemoteAddr() *net.TCPAddr { return s.remoteAddr }

// Stats returns a snapshot of the socket counters.
func (s *Socket) Stats() Stats { return s.stats.snapshot() }

// Buffered returns the number of bytes waiting in the send buffer.
func (s *Socket) Buffered() int {
	if s.sendBuf == nil {
		return 0
	}
	return s.sendBuf.Len()
}

// Pending returns the number of received bytes not yet consumed.
func (s *Socket) Pending() int { return s.recvLen }

// Err returns the fatal error reported to the error callback, or nil.
func (s *Socket) Err() error { return s.err }

// SetErrorFn binds or clears the error callback.
func (s *Socket) SetErrorFn(fn ErrorFunc) { s.onError = fn }

// SetDrainFn binds or clears the drain callback.
func (s *Socket) SetDrainFn(fn DrainFunc) { s.onDrain = fn }

// SetRecvFn binds the receive callback. nil pauses delivery: nothing more
// is read from the kernel until a callback is bound again. Binding a
// callback immediately drains whatever is pending, because an
// edge-triggered descriptor will not signal data that arrived while paused.
func (s *Socket) SetRecvFn(fn RecvFunc) {
	s.onRecv = fn
	if fn == nil || s.listener {
		return
	}
	if s.receiving {
		// the running receive loop picks the new callback up
		s.rearm = true
		return
	}
	s.recvFromSocket()
}

// End deregisters the socket, half-closes connected sockets and closes the
// descriptor. Calling End again is a no-op.
func (s *Socket) End() error {
	if s.fd < 0 {
		return nil
	}
	s.log.Debug("closing socket")

	err := s.r.Deregister(s.fd)
	if !s.listener {
		if serr := unix.Shutdown(s.fd, unix.SHUT_WR); serr != nil && !errors.Is(serr, unix.ENOTCONN) {
			err = multierr.Append(err, serr)
		}
	}
	err = multierr.Append(err, unix.Close(s.fd))

	s.fd = -1
	s.state = api.StateClosed
	if s.recvBuf != nil {
		s.opts.recvPool.PutBuffer(s.recvBuf)
		s.recvBuf = nil
	}
	s.recvOff, s.recvLen = 0, 0
	if !s.listener {
		s.opts.observer.Closed(s)
	}
	return err
}

// monitor registers a connected socket for edge-triggered read and write
// readiness.
func (s *Socket) monitor() error {
	return s.r.Register(s.fd, api.EventRead|api.EventWrite|api.EventEdge, s.handleEvent)
}

// handleEvent is the reactor callback of a connected socket.
func (s *Socket) handleEvent(_ int, ev api.Events) {
	if ev.Failed() {
		s.stats.sysErrors.Add(1)
		err := transport.SocketError(s.fd)
		if err == nil {
			err = unix.EIO
		}
		s.log.Debug("readiness error", zap.Error(err))
		s.fail(err)
		return
	}
	if ev.Readable() {
		s.recvFromSocket()
	}
	if ev.Writable() && s.fd >= 0 {
		s.writeToSocket()
	}
}

// fail hands the first socket-fatal error to the owner. The socket stays
// open.
func (s *Socket) fail(err error) {
	if s.err != nil {
		s.log.Debug("socket already failed", zap.NamedError("first", s.err), zap.Error(err))
		return
	}
	s.err = err
	s.opts.observer.Failed(s, err)
	if s.onError != nil {
		s.onError(s, err)
	}
}
