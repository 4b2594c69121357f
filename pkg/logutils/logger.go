// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is one of: debug, info, warn, error, fatal.
	Level string
	// File receives JSON logs. Logs go to Stderr when empty.
	File string
	// Console writes human readable lines instead of JSON. Ignored when File
	// is set.
	Console bool
	// Stderr overrides os.Stderr, mainly for tests.
	Stderr io.Writer
}

// New returns a logger for opts and a closer for any file it opened.
//
// The TUI owns the terminal, so callers running it should always set File.
func New(opts Options) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stderr
	if opts.Stderr != nil {
		writer = opts.Stderr
	}

	switch {
	case opts.File != "":
		logsDir := filepath.Dir(opts.File)
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		osFile, err := os.Create(opts.File)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = osFile.Close() }
		writer = osFile
	case opts.Console:
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}
