//go:build linux
// +build linux

// File: cmdserver/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package cmdserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/eapache/queue"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/nsock/api"
	"github.com/momentics/nsock/reactor"
)

const readChunk = 4096

// HandlerFunc serves one command and returns the response text.
type HandlerFunc func(req *Request) string

// Server dispatches input lines to command handlers.
type Server struct {
	r    *reactor.Reactor
	opts options
	log  *zap.Logger

	commands map[string]HandlerFunc
	lines    *queue.Queue // complete lines awaiting dispatch
	partial  []byte       // trailing bytes without a newline yet
	buf      []byte

	eof        bool
	monitoring bool
}

// New creates a command server on r. It does not watch its input until
// Monitor is called.
func New(r *reactor.Reactor, opts ...Option) *Server {
	o := newOptions(opts)
	return &Server{
		r:        r,
		opts:     o,
		log:      o.log.Named("cmdserver"),
		commands: make(map[string]HandlerFunc),
		lines:    queue.New(),
		buf:      make([]byte, readChunk),
	}
}

// AddCommand registers fn for name. It returns false if name is taken.
func (s *Server) AddCommand(name string, fn HandlerFunc) bool {
	if _, ok := s.commands[name]; ok || fn == nil {
		return false
	}
	s.commands[name] = fn
	return true
}

// Commands returns the registered command names, sorted.
func (s *Server) Commands() []string {
	out := make([]string, 0, len(s.commands))
	for name := range s.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Monitor starts watching the input. It returns false once the input has
// reached EOF or could not be registered; monitoring twice is harmless.
func (s *Server) Monitor() bool {
	if s.eof {
		return false
	}
	if s.monitoring {
		return true
	}
	if err := s.r.Register(s.opts.in, api.EventRead, s.onReadable); err != nil {
		s.log.Warn("cannot monitor input", zap.Int("fd", s.opts.in), zap.Error(err))
		return false
	}
	s.monitoring = true
	return true
}

// Stop stops watching the input and runs the EOF callback. Only the first
// call has an effect.
func (s *Server) Stop() {
	if s.eof {
		return
	}
	s.eof = true
	if s.monitoring {
		_ = s.r.Deregister(s.opts.in)
		s.monitoring = false
	}
	if s.opts.onEOF != nil {
		s.opts.onEOF()
	}
}

// Stopped reports whether the input is done.
func (s *Server) Stopped() bool { return s.eof }

func (s *Server) onReadable(fd int, ev api.Events) {
	s.log.Debug("input readable", zap.Int("fd", fd), zap.Stringer("events", ev))
	if ev.Failed() {
		s.finish()
		return
	}

	n, err := unix.Read(fd, s.buf)
	switch {
	case err != nil && (errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)):
		return
	case err != nil:
		s.log.Warn("input read failed", zap.Error(err))
		s.finish()
		return
	case n == 0:
		s.finish()
		return
	}

	s.split(s.buf[:n])
	s.dispatchQueued()
}

// split appends complete lines from data to the queue and keeps the rest.
func (s *Server) split(data []byte) {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			s.partial = append(s.partial, data...)
			return
		}
		line := append(s.partial, data[:i]...)
		s.lines.Add(string(bytes.TrimSuffix(line, []byte{'\r'})))
		s.partial = s.partial[:0]
		data = data[i+1:]
	}
}

// finish flushes an unterminated last line and stops.
func (s *Server) finish() {
	if len(s.partial) > 0 {
		s.lines.Add(string(s.partial))
		s.partial = nil
	}
	s.dispatchQueued()
	s.Stop()
}

func (s *Server) dispatchQueued() {
	for !s.eof && s.lines.Length() > 0 {
		line := s.lines.Remove().(string)
		s.dispatch(line)
	}
}

// dispatch serves one line, in raw mode when no command is registered.
func (s *Server) dispatch(line string) {
	if len(s.commands) == 0 {
		if s.opts.onRaw != nil {
			s.opts.onRaw(rawRequest(line).Raw)
		}
		return
	}

	req := ParseRequest(line)
	if req.Cmd == "" {
		return
	}
	fn, ok := s.commands[req.Cmd]
	if !ok {
		s.log.Info("unknown command", zap.String("cmd", req.Cmd))
		return
	}
	if resp := fn(req); resp != "" {
		if err := writeLine(s.opts.out, resp); err != nil {
			s.log.Warn("response write failed", zap.Error(err))
		}
	}
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
