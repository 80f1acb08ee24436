package tailor

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled reports
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for tailor and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by tailor:
//   - [slog.LevelDebug]: per-tick painter stats (see [Painter.SetDebugMode])
//   - [slog.LevelInfo]: background unit lifecycle
//   - [slog.LevelError]: failed operations, one record per error in the chain
//
// Example:
//
//	tailor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger shared by tailor and its sub-packages.
// It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
