//go:build linux
// +build linux

// File: reactor/poller_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) backend.

package reactor

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
)

type epoller struct {
	epfd int
	raw  []unix.EpollEvent
}

func newPoller() (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epoller{epfd: epfd}, nil
}

func (p *epoller) add(fd int, interest api.Events) error {
	ev := unix.EpollEvent{Events: toEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

func (p *epoller) del(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

func (p *epoller) wait(out []event, timeout time.Duration) (int, error) {
	if len(p.raw) < len(out) {
		p.raw = make([]unix.EpollEvent, len(out))
	}
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, p.raw[:len(out)], ms)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil // interrupted by signal - normal
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		out[i] = event{fd: int(p.raw[i].Fd), events: fromEpoll(p.raw[i].Events)}
	}
	return n, nil
}

func (p *epoller) close() error {
	if p.epfd < 0 {
		return nil
	}
	err := unix.Close(p.epfd)
	p.epfd = -1
	return err
}

func toEpoll(interest api.Events) uint32 {
	var ev uint32
	if interest&api.EventRead != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&api.EventWrite != 0 {
		ev |= unix.EPOLLOUT
	}
	if interest&api.EventEdge != 0 {
		ev |= unix.EPOLLET
	}
	return ev
}

func fromEpoll(ev uint32) api.Events {
	var out api.Events
	if ev&unix.EPOLLIN != 0 {
		out |= api.EventRead
	}
	if ev&unix.EPOLLOUT != 0 {
		out |= api.EventWrite
	}
	if ev&unix.EPOLLERR != 0 {
		out |= api.EventError
	}
	if ev&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		out |= api.EventHangup
	}
	return out
}
