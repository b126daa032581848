package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog to Logger. The development API uses it so its
// request log matches the JSON lines emitted by echo middleware.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// NewZerolog builds a zerolog-backed Logger. pretty switches to the
// human-readable console writer.
func NewZerolog(w io.Writer, level string, pretty bool) *ZerologLogger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return NewZerologLogger(l)
}

// Zerolog exposes the underlying logger for libraries that want it directly.
func (z *ZerologLogger) Zerolog() zerolog.Logger { return z.l }

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Debug(), msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Info(), msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Warn(), msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Error(), msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for i := 0; i < len(args); i += 2 {
		c = c.Interface(keyAt(args, i), valueAt(args, i))
	}
	return &ZerologLogger{l: c.Logger()}
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		v := valueAt(args, i)
		if err, ok := v.(error); ok {
			e = e.AnErr(keyAt(args, i), err)
			continue
		}
		e = e.Interface(keyAt(args, i), v)
	}
	e.Msg(msg)
}

func keyAt(args []any, i int) string {
	if k, ok := args[i].(string); ok {
		return k
	}
	return fmt.Sprint(args[i])
}

// valueAt mirrors slog's handling of an odd trailing key.
func valueAt(args []any, i int) any {
	if i+1 < len(args) {
		return args[i+1]
	}
	return "!MISSING"
}

func zerologLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
