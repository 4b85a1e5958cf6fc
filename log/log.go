// Package log provides the structured logger every component is
// constructed with. It generalizes the teacher's single-method Warnf
// Logger interface into the small leveled surface a zerolog-backed
// implementation naturally offers, while keeping a no-op default so
// components never need a nil check.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging interface every component depends on.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zlog struct {
	l zerolog.Logger
}

// New builds a zerolog-backed Logger writing to w (os.Stderr if nil).
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &zlog{l: zerolog.New(w).With().Timestamp().Logger()}
}

func (z *zlog) Debugf(format string, args ...any) { z.l.Debug().Msgf(format, args...) }
func (z *zlog) Warnf(format string, args ...any)  { z.l.Warn().Msgf(format, args...) }
func (z *zlog) Errorf(format string, args ...any) { z.l.Error().Msgf(format, args...) }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Nop is a Logger that discards everything, used as a safe default.
var Nop Logger = nopLogger{}
