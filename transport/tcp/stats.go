//go:build linux
// +build linux

// File: transport/tcp/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"fmt"
	"sync/atomic"
)

// Stats is a point-in-time copy of a socket's counters.
type Stats struct {
	Accepts       uint64 // connections accepted (listeners only)
	SysErrors     uint64 // readiness errors and failed descriptor setup
	AcceptErrors  uint64
	RecvErrors    uint64
	SendErrors    uint64
	BytesSent     uint64
	BytesReceived uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("accepts=%d sys_errors=%d accept_errors=%d recv_errors=%d send_errors=%d bytes_sent=%d bytes_received=%d",
		s.Accepts, s.SysErrors, s.AcceptErrors, s.RecvErrors, s.SendErrors, s.BytesSent, s.BytesReceived)
}

// counters are updated on the reactor goroutine only; atomics make
// snapshots safe from anywhere else (metrics scrapes, debug probes).
type counters struct {
	accepts       atomic.Uint64
	sysErrors     atomic.Uint64
	acceptErrors  atomic.Uint64
	recvErrors    atomic.Uint64
	sendErrors    atomic.Uint64
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Accepts:       c.accepts.Load(),
		SysErrors:     c.sysErrors.Load(),
		AcceptErrors:  c.acceptErrors.Load(),
		RecvErrors:    c.recvErrors.Load(),
		SendErrors:    c.sendErrors.Load(),
		BytesSent:     c.bytesSent.Load(),
		BytesReceived: c.bytesReceived.Load(),
	}
}
