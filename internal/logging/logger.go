package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures the process-wide structured logger that every internal
// component logger hangs off.
type Options struct {
	Verbose    bool
	JSONFormat bool
	OutputFile string // empty = stderr only
}

// Setup installs the default slog logger. Component loggers created with
// slog.Default().With(...) pick the configuration up automatically. The
// returned close function releases the log file, if any.
func Setup(opts Options) (func() error, error) {
	writers := []io.Writer{os.Stderr}

	var file *os.File
	if opts.OutputFile != "" {
		dir := filepath.Dir(opts.OutputFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
		f, err := os.OpenFile(opts.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", opts.OutputFile, err)
		}
		file = f
		writers = append(writers, f)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Verbose,
	}
	out := io.MultiWriter(writers...)

	var handler slog.Handler
	if opts.JSONFormat {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))

	closeFn := func() error {
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return closeFn, nil
}
