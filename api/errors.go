// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared by the reactor, sockets and the command server.

package api

import "errors"

// Common errors used across the library.
var (
	ErrNotSupported    = errors.New("operation not supported")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoAddress       = errors.New("no usable address")
)
