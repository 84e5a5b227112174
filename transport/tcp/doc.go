// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements non-blocking TCP sockets driven by a reactor.
//
// A Socket is either a listener or a connected endpoint. Listen and Connect
// return sockets already registered with the reactor; accepted connections
// are handed to the listener's connect callback. Everything runs on the
// reactor goroutine: callbacks are invoked synchronously from readiness
// events and never concurrently.
//
// Flow control works in both directions without growing memory:
//
//   - Send copies into a fixed 8 KiB ring and reports how much it accepted.
//     A short count means the ring is full; the drain callback fires when the
//     ring empties again.
//   - The receive callback returns how many of the offered bytes it consumed.
//     The rest stays buffered and is offered again, before any further read
//     from the kernel, on the next readiness edge or when the receive callback
//     is rebound. A nil receive callback pauses reading altogether.
//
// Errors are reported through the error callback and never close the socket;
// the owner decides when to call End. An Observer set with WithObserver
// sees the same activity for accounting.
package tcp
