// File: api/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// SocketState is the lifecycle state of a socket.
//
// Sockets are handed out already bound to the reactor (listening or
// connected), so the lifecycle collapses to two states.
type SocketState int

const (
	StateActive SocketState = iota
	StateClosed
)

func (s SocketState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
