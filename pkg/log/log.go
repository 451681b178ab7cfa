// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"io"
	"log/slog"
	"os"
	"sync"

	colorable "github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Options configures the process-wide logger built by Init.
type Options struct {
	// Level is the minimum slog level that reaches any output.
	Level slog.Level
	// FilePath, if non-empty, additionally fans every record out to this
	// file (opened for append, created if missing).
	FilePath string
}

var (
	mu      sync.Mutex
	global  *slog.Logger
	logFile *os.File
)

// Init builds the process-wide logger from Options. It is safe to call
// more than once (e.g. a CLI flag changing verbosity before the engine
// starts); the previous log file, if any, is closed first.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	console := zerolog.New(zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}).
		With().
		Timestamp().
		Logger()

	handlers := []slog.Handler{
		slogzerolog.Option{Level: opts.Level, Logger: &console}.NewZerologHandler(),
	}

	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		logFile = f
		fileLogger := zerolog.New(io.Writer(f)).With().Timestamp().Logger()
		handlers = append(handlers, slogzerolog.Option{Level: opts.Level, Logger: &fileLogger}.NewZerologHandler())
	}

	global = slog.New(slogmulti.Fanout(handlers...))
	return nil
}

// Get returns a child logger tagged with the given component name. If
// Init has not been called, a sensible default (info level, console
// only) is used so packages can log usefully in tests.
func Get(component string) *slog.Logger {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		_ = Init(Options{Level: slog.LevelInfo})
		mu.Lock()
		l = global
		mu.Unlock()
	}
	return l.With("component", component)
}

// Close releases the log file opened by Init, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
