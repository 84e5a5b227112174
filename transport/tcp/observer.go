//go:build linux
// +build linux

// File: transport/tcp/observer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

// Observer is notified of connected-socket activity on the reactor
// goroutine. Listeners are not reported.
type Observer interface {
	Accepted(s *Socket)
	Connected(s *Socket)
	Closed(s *Socket)
	Received(s *Socket, n int)
	Sent(s *Socket, n int)
	Failed(s *Socket, err error)
}

type nopObserver struct{}

func (nopObserver) Accepted(*Socket) {}
func (nopObserver) Connected(*Socket) {}
func (nopObserver) Closed(*Socket) {}
func (nopObserver) Received(*Socket, int) {}
func (nopObserver) Sent(*Socket, int) {}
func (nopObserver) Failed(*Socket, error) {}
