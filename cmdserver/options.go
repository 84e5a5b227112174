// File: cmdserver/options.go
// Author: momentics <momentics@gmail.com>

package cmdserver

import (
	"io"
	"os"

	"go.uber.org/zap"
)

type options struct {
	in    int
	out   io.Writer
	log   *zap.Logger
	onEOF func()
	onRaw func(line string)
}

// Option configures a Server.
type Option func(*options)

// WithInput sets the descriptor commands are read from.
func WithInput(fd int) Option { return func(o *options) { o.in = fd } }

// WithOutput sets where handler responses are written.
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithEOF sets the callback run once the input is exhausted or failed.
func WithEOF(fn func()) Option { return func(o *options) { o.onEOF = fn } }

// WithRawInput sets the raw-mode line callback.
func WithRawInput(fn func(line string)) Option { return func(o *options) { o.onRaw = fn } }

func newOptions(opts []Option) options {
	o := options{
		in:  int(os.Stdin.Fd()),
		out: os.Stdout,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
