// Package logging wires structured logging for shirokuma. It uses
// gopkg.in/natefinch/lumberjack.v2 for rotation once a log file is
// configured, even though observability is out of scope for
// observability layers for the collaborator surfaces. The core
// itself still logs the way the rest of the corpus logs.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide logger.
type Options struct {
	// FilePath, if set, routes logs through a rotating file sink
	// instead of stderr. Empty means stderr only.
	FilePath string
	Debug    bool
}

// New builds a slog.Logger per Options. The server never logs item
// content, description, or tags at Warn level or above; call
// sites are responsible for omitting those fields, this constructor
// only sets the sink and level.
func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stderr
	if opts.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Redacted wraps a value that must never be logged verbatim (item
// content/description/tags), surfacing only its length so operators
// can still see that a write happened without leaking user content.
type Redacted struct {
	Len int
}

func (r Redacted) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("len", r.Len))
}

func RedactString(s string) Redacted {
	return Redacted{Len: len(s)}
}
