//go:build !linux
// +build !linux

// File: reactor/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub backend for unsupported platforms.

package reactor

import (
	"fmt"

	"github.com/momentics/nsock/api"
)

func newPoller() (poller, error) {
	return nil, fmt.Errorf("reactor: epoll backend: %w", api.ErrNotSupported)
}
