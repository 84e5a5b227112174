// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-threaded readiness reactor: one OS
// multiplexer handle, a descriptor to callback map and the wait/dispatch
// loop. It is the only component that talks to epoll.
//
// A Reactor is not safe for concurrent use. Register, Deregister, Poll and
// RunUntil must all be called from the goroutine driving the loop; the stop
// flag handed to RunUntil is the only value another goroutine may touch.
//
// Registration is an ownership edge: the reactor keeps the callback, and
// whatever the callback captures, alive until the descriptor is deregistered.
package reactor
