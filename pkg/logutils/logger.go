package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Stderr is the file name that sends human-readable output to stderr instead
// of JSON to a file.
const Stderr = "-"

// New builds the process logger.
//
//   - file == ""     JSON lines on stdout
//   - file == Stderr console output on stderr
//   - otherwise      JSON lines appended to file, creating parent dirs
//
// level is any zerolog level name. The returned func closes the file and is
// always safe to call.
func New(level string, file string, hooks ...zerolog.Hook) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, noop, err
	}

	w, closer, err := open(file)
	if err != nil {
		return zerolog.Logger{}, noop, err
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	for _, h := range hooks {
		l = l.Hook(h)
	}
	return l, closer, nil
}

func open(file string) (io.Writer, func(), error) {
	switch file {
	case "":
		return os.Stdout, func() {}, nil
	case Stderr:
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create logs dir: %w", err)
	}
	// Append so consecutive runs share one log.
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
