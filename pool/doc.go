// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package pool provides the byte containers of the socket layer: the
// fixed-capacity send ring that implements write backpressure and the
// pool of receive scratch buffers.
package pool
