// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package cmdserver reads line-oriented commands from a descriptor
// (standard input by default) through the reactor.
//
// Each line is a request of the form
//
//	cmd key=value key2=value2 ...
//
// dispatched to the handler registered for cmd; a non-empty handler response
// is written to the output followed by a newline. With no handlers
// registered the server runs in raw mode and hands every line, unparsed, to
// the raw-input callback.
//
// The input is watched level-triggered and read once per readiness event,
// so a blocking descriptor such as a terminal never stalls the loop. Regular
// files cannot be watched by epoll and are rejected by Monitor.
package cmdserver
