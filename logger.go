package quill

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/quill/text"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
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

// SetLogger configures the logger for quill and its sub-packages.
// By default quill produces no log output. Pass nil to restore silence.
//
// Log levels used by quill:
//   - [slog.LevelDebug]: glyph cache growth, per-frame draw statistics
//   - [slog.LevelInfo]: backend lifecycle events
//   - [slog.LevelWarn]: font not found, bundled fallback substituted
//
// Example:
//
//	quill.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	text.SetLogger(l)
}

// Logger returns the current logger used by quill.
// Sub-packages that sit above quill (render) use it directly; backends that
// accept a logger receive it through [PropagateLogger].
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// PropagateLogger hands the current logger to v if it accepts one.
func PropagateLogger(v any) {
	if ls, ok := v.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
}
