//go:build linux
// +build linux

// internal/transport/socket_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Descriptor setup performed before a socket joins the reactor.

package transport

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// BindSocket creates a stream socket bound to a. The descriptor is still
// blocking.
func BindSocket(a *net.TCPAddr) (int, error) {
	family, sa, err := ToSockaddr(a)
	if err != nil {
		return -1, err
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %v: %w", a, err)
	}
	return fd, nil
}

// DialSocket creates a stream socket and connects it to a. The connect is
// blocking: the calling goroutine stalls for the whole handshake.
func DialSocket(a *net.TCPAddr) (int, error) {
	family, sa, err := ToSockaddr(a)
	if err != nil {
		return -1, err
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	if err := connectBlocking(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("connect %v: %w", a, err)
	}
	return fd, nil
}

// connectBlocking connects a blocking descriptor. When a signal interrupts
// the call the handshake continues in the kernel, so completion is awaited
// with poll and the outcome read from SO_ERROR.
func connectBlocking(fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	if !errors.Is(err, unix.EINTR) {
		return err
	}
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		_, err = unix.Poll(pfd, -1)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		return err
	}
	return SocketError(fd)
}

// SocketError fetches and clears the pending error of a socket.
func SocketError(fd int) error {
	soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soerr != 0 {
		return unix.Errno(soerr)
	}
	return nil
}

// LocalAddr returns the bound address of fd.
func LocalAddr(fd int) (*net.TCPAddr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	return FromSockaddr(sa), nil
}

// RemoteAddr returns the peer address of a connected fd.
func RemoteAddr(fd int) (*net.TCPAddr, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return nil, fmt.Errorf("getpeername: %w", err)
	}
	return FromSockaddr(sa), nil
}

// SetNoDelay disables Nagle's algorithm.
func SetNoDelay(fd int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}
