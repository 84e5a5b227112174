// File: api/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness event mask shared by the reactor and the descriptors it drives.

package api

import "strings"

// Events is a readiness bit mask. As an interest mask it selects what a
// descriptor is watched for; as a delivered mask it reports what happened.
type Events uint32

const (
	// EventRead reports (or requests) read readiness.
	EventRead Events = 1 << iota
	// EventWrite reports (or requests) write readiness.
	EventWrite
	// EventError is only ever delivered: an error is pending on the descriptor.
	EventError
	// EventHangup is only ever delivered: the peer hung up.
	EventHangup
	// EventEdge requests edge-triggered notification.
	EventEdge
)

// Readable reports whether the read bit is set.
func (e Events) Readable() bool { return e&EventRead != 0 }

// Writable reports whether the write bit is set.
func (e Events) Writable() bool { return e&EventWrite != 0 }

// Failed reports whether the error bit is set.
func (e Events) Failed() bool { return e&EventError != 0 }

func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	names := make([]string, 0, 5)
	for _, b := range []struct {
		bit  Events
		name string
	}{
		{EventRead, "read"},
		{EventWrite, "write"},
		{EventError, "error"},
		{EventHangup, "hangup"},
		{EventEdge, "edge"},
	} {
		if e&b.bit != 0 {
			names = append(names, b.name)
		}
	}
	return strings.Join(names, "|")
}
