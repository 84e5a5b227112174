//go:build linux
// +build linux

// File: transport/tcp/connect_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
	"github.com/momentics/nsock/internal/transport"
	"github.com/momentics/nsock/reactor"
)

// Connect establishes a client connection to host:port and registers it
// with r. Candidates are tried in resolver order until one connects.
//
// The connect itself is blocking: the caller's goroutine, normally the
// reactor goroutine, stalls until the handshake completes or fails. Only
// then is the descriptor switched to non-blocking mode.
func Connect(r *reactor.Reactor, host string, port uint16, onRecv RecvFunc, onError ErrorFunc, opts ...Option) (*Socket, error) {
	o := newOptions(opts)
	where := transport.HostPort(host, port)

	addrs, err := transport.Resolve(context.Background(), host, port, false)
	if err != nil {
		return nil, fmt.Errorf("tcp: connect %s: %w", where, err)
	}

	fd := -1
	lastErr := api.ErrNoAddress
	for _, a := range addrs {
		fd, err = transport.DialSocket(a)
		if err == nil {
			break
		}
		lastErr = err
		o.log.Debug("connect candidate failed", zap.Stringer("addr", a), zap.Error(err))
	}
	if fd < 0 {
		return nil, fmt.Errorf("tcp: connect %s: %w", where, lastErr)
	}

	local, err := transport.LocalAddr(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tcp: connect %s: %w", where, err)
	}
	remote, err := transport.RemoteAddr(fd)
	if err == nil {
		err = unix.SetNonblock(fd, true)
	}
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tcp: connect %s: %w", where, err)
	}
	_ = transport.SetNoDelay(fd)

	s := newConnected(fd, r, o)
	s.localAddr = local
	s.remoteAddr = remote
	s.onRecv = onRecv
	s.onError = onError
	if err := s.monitor(); err != nil {
		s.release()
		return nil, fmt.Errorf("tcp: connect %s: %w", where, err)
	}
	o.observer.Connected(s)
	s.log.Info("connected", zap.Stringer("local", local), zap.Stringer("remote", remote))
	return s, nil
}
