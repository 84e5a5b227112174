//go:build linux
// +build linux

// File: transport/tcp/io_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Edge-triggered receive and send loops.

package tcp

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Send queues as much of p as fits into the send buffer and immediately
// tries to flush it. It returns the number of bytes accepted; a short count
// means the buffer is full and the caller should retry after the drain
// callback. Closed sockets and listeners accept nothing.
func (s *Socket) Send(p []byte) int {
	if s.fd < 0 || s.sendBuf == nil {
		return 0
	}
	n := s.sendBuf.Put(p)
	s.writeToSocket()
	return n
}

// recvFromSocket drains the kernel receive queue into the receive callback.
// Edge-triggered readiness does not repeat for data already queued, so the
// loop runs until EAGAIN unless the consumer stops taking bytes.
func (s *Socket) recvFromSocket() {
	if s.receiving {
		return
	}
	s.receiving = true
	defer func() { s.receiving = false }()

	for s.fd >= 0 && s.onRecv != nil {
		s.rearm = false
		if s.recvLen > 0 {
			if s.deliver() {
				continue
			}
			if s.rearm && s.fd >= 0 {
				// the callback was rebound while we were delivering
				continue
			}
			return
		}

		n, err := unix.Read(s.fd, s.recvBuf)
		if err != nil {
			switch {
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				return
			}
			s.stats.recvErrors.Add(1)
			s.log.Debug("recv failed", zap.Error(err))
			s.fail(err)
			return
		}
		if n == 0 {
			s.log.Debug("peer closed")
			s.fail(io.EOF)
			return
		}
		s.stats.bytesReceived.Add(uint64(n))
		s.opts.observer.Received(s, n)
		s.recvOff, s.recvLen = 0, n
	}
}

// deliver offers the undelivered bytes to the receive callback and reports
// whether all of them were consumed.
func (s *Socket) deliver() bool {
	n := s.onRecv(s, s.recvBuf[s.recvOff:s.recvOff+s.recvLen])
	if s.fd < 0 {
		return false
	}
	n = max(0, min(n, s.recvLen))
	s.recvOff += n
	s.recvLen -= n
	if s.recvLen > 0 {
		return false
	}
	s.recvOff = 0
	return true
}

// writeToSocket flushes the send buffer. Each time the buffer empties the
// drain callback runs; if it queued more data the flush continues.
func (s *Socket) writeToSocket() {
	if s.writing {
		// an outer flush is running and will pick the new data up
		return
	}
	s.writing = true
	defer func() { s.writing = false }()

	for s.fd >= 0 && !s.sendBuf.Empty() {
		if !s.flushSendBuffer() {
			return
		}
		if s.onDrain == nil {
			return
		}
		s.onDrain(s)
	}
}

// flushSendBuffer writes buffered bytes until the buffer is empty or the
// kernel pushes back, and reports whether the buffer was emptied.
func (s *Socket) flushSendBuffer() bool {
	for {
		chunk := s.sendBuf.Get()
		if len(chunk) == 0 {
			return true
		}
		n, err := unix.SendmsgN(s.fd, chunk, nil, nil, unix.MSG_NOSIGNAL)
		if err != nil {
			switch {
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				return false
			}
			s.stats.sendErrors.Add(1)
			s.log.Debug("send failed", zap.Error(err))
			s.fail(err)
			return false
		}
		if n == 0 {
			return false
		}
		s.sendBuf.Discard(n)
		s.stats.bytesSent.Add(uint64(n))
		s.opts.observer.Sent(s, n)
	}
}
