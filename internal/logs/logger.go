// Package logs builds the process logger: a text handler for the terminal
// plus an optional JSON debug file, fanned out with slog-multi.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures New.
type Options struct {
	// Writer receives human-readable records. Nil disables the terminal handler.
	Writer io.Writer
	// Debug lowers the terminal level from warn to debug.
	Debug bool
	// FilePath, when set, appends every debug-level record as JSON.
	FilePath string
}

// Logger owns the handlers built by New.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
	file  *os.File
}

// New builds a logger from opts. Close must be called to release the debug file.
func New(opts Options) (*Logger, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if opts.Debug {
		level.Set(slog.LevelDebug)
	}

	var handlers []slog.Handler
	if opts.Writer != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Writer, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var file *os.File
	if opts.FilePath != "" {
		// #nosec G301 - owner-only directory
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o700); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		// #nosec G304 - path comes from the advisor directory
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening debug log: %w", err)
		}
		file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return &Logger{
		Logger: slog.New(slogmulti.Fanout(handlers...)),
		level:  level,
		file:   file,
	}, nil
}

// SetLevel changes the terminal level at runtime.
func (l *Logger) SetLevel(lvl slog.Level) {
	l.level.Set(lvl)
}

// Level reports the terminal level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the debug file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
