package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tasgo-io/tasgo/config"
)

// Logger carries the library's structured log output. It embeds
// slog.Logger, so it satisfies the narrow logging interfaces consuming
// packages declare (broker.Logger among them) and is usable directly.
type Logger struct {
	*slog.Logger
}

// levelNames maps the configuration's level strings to slog levels.
// Unknown names resolve to info rather than failing the load.
var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds a logger from the logging section of the configuration:
// level filtering, text or JSON encoding, stdout or stderr destination.
func New(cfg config.LoggingConfig) *Logger {
	return newWithWriter(cfg, writerFor(cfg.Output))
}

func newWithWriter(cfg config.LoggingConfig, w io.Writer) *Logger {
	level, ok := levelNames[strings.ToLower(cfg.Level)]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// Component returns a child logger tagged with the subsystem it logs
// for, so broker and device events can be told apart in shared output.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// With returns a child logger carrying extra default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns the logger used before configuration is loaded:
// info-level JSON on stdout.
func Default() *Logger {
	return New(config.LoggingConfig{})
}

// Noop returns a logger that discards everything, for embedders that
// want the library silent.
func Noop() *Logger {
	return newWithWriter(config.LoggingConfig{Level: "error"}, io.Discard)
}
