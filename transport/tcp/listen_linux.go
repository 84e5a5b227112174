//go:build linux
// +build linux

// File: transport/tcp/listen_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Listening sockets and the accept path.

package tcp

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
	"github.com/momentics/nsock/internal/transport"
	"github.com/momentics/nsock/pool"
	"github.com/momentics/nsock/reactor"
)

// Listen binds the first resolvable address of host:port that accepts a
// bind, starts listening and registers the socket with r for read readiness.
// An empty host listens on the wildcard address. Every accepted connection
// is passed to onConnect.
func Listen(r *reactor.Reactor, host string, port uint16, onConnect ConnectFunc, opts ...Option) (*Socket, error) {
	o := newOptions(opts)
	where := transport.HostPort(host, port)

	addrs, err := transport.Resolve(context.Background(), host, port, true)
	if err != nil {
		return nil, fmt.Errorf("tcp: listen %s: %w", where, err)
	}

	fd := -1
	lastErr := api.ErrNoAddress
	for _, a := range addrs {
		fd, err = transport.BindSocket(a)
		if err == nil {
			break
		}
		lastErr = err
		o.log.Debug("bind candidate failed", zap.Stringer("addr", a), zap.Error(err))
	}
	if fd < 0 {
		return nil, fmt.Errorf("tcp: listen %s: %w", where, lastErr)
	}

	local, err := transport.LocalAddr(fd)
	if err == nil {
		err = unix.Listen(fd, o.backlog)
	}
	if err == nil {
		err = unix.SetNonblock(fd, true)
	}
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tcp: listen %s: %w", where, err)
	}

	s := newSocket(fd, r, o)
	s.listener = true
	s.localAddr = local
	s.onConnect = onConnect

	// a read event on a listener means a connection is waiting in the backlog
	if err := r.Register(fd, api.EventRead, s.handleAcceptEvent); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tcp: listen %s: %w", where, err)
	}
	s.log.Info("listening", zap.Stringer("addr", local))
	return s, nil
}

// handleAcceptEvent is the reactor callback of a listener. It accepts one
// pending connection per event; the level-triggered registration reports
// the rest on the following waits.
func (s *Socket) handleAcceptEvent(_ int, ev api.Events) {
	if ev.Failed() || !ev.Readable() {
		s.stats.sysErrors.Add(1)
		return
	}

	nfd, rsa, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return
		}
		s.stats.acceptErrors.Add(1)
		s.log.Warn("accept failed", zap.Error(err))
		return
	}

	local, err := transport.LocalAddr(nfd)
	if err != nil {
		s.stats.sysErrors.Add(1)
		s.log.Warn("accepted connection setup failed", zap.Error(err))
		unix.Close(nfd)
		return
	}
	_ = transport.SetNoDelay(nfd)

	conn := newConnected(nfd, s.r, s.opts)
	conn.localAddr = local
	conn.remoteAddr = transport.FromSockaddr(rsa)
	if err := conn.monitor(); err != nil {
		s.stats.sysErrors.Add(1)
		s.log.Warn("failed to monitor accepted connection", zap.Error(err))
		conn.release()
		return
	}

	s.stats.accepts.Add(1)
	s.opts.observer.Accepted(conn)
	s.log.Debug("accepted connection", zap.Uint64("conn", uint64(conn.id)), zap.Stringer("remote", conn.remoteAddr))
	if s.onConnect == nil {
		// nobody can take ownership of it
		_ = conn.End()
		return
	}
	s.onConnect(conn)
}

// newConnected wraps a connected, non-blocking descriptor.
func newConnected(fd int, r *reactor.Reactor, o *options) *Socket {
	s := newSocket(fd, r, o)
	s.recvBuf = o.recvPool.GetBuffer()
	s.sendBuf = pool.NewRingBuffer(o.sendBuffer)
	return s
}

// release closes a socket that never made it into the reactor.
func (s *Socket) release() {
	unix.Close(s.fd)
	s.fd = -1
	s.state = api.StateClosed
	if s.recvBuf != nil {
		s.opts.recvPool.PutBuffer(s.recvBuf)
		s.recvBuf = nil
	}
}
