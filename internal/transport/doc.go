// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw socket plumbing for the tcp package: address resolution, conversion
// between net.TCPAddr and unix.Sockaddr, and the blocking bind/connect
// helpers that run before a descriptor is handed to the reactor.

package transport
