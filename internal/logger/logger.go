// Package logger builds the zerolog loggers used by the server and the CLI.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Option adjusts how New builds the logger
type Option func(*options)

type options struct {
	console io.Writer
}

// WithConsole sends console output to w instead of os.Stdout
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// New creates the application logger from the log_config section. Console output goes to
// stdout; when LogFile is set every entry is also written to a rotated file.
func New(cfg FileLogConfig, opts ...Option) (zerolog.Logger, error) {
	o := options{console: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, err
	}
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	writers := []io.Writer{consoleWriter(format, o.console, false)}
	if cfg.LogFile != "" {
		file, err := rotatingFile(cfg)
		if err != nil {
			return zerolog.Logger{}, err
		}
		writers = append(writers, consoleWriter(format, file, true))
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(level)
	stdlog.SetOutput(log)
	stdlog.SetFlags(0)

	return log, nil
}

func parseLevel(raw string) (zerolog.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// consoleWriter renders json as-is and everything else through zerolog.ConsoleWriter. Files
// and the text format never get colors.
func consoleWriter(format string, out io.Writer, toFile bool) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    toFile || format == "text",
	}
}

func rotatingFile(cfg FileLogConfig) (io.Writer, error) {
	if dir := filepath.Dir(cfg.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errorwrapper.WrapError(err, "create log directory")
		}
	}

	maxSize := cfg.MaxLogSizeMB
	if maxSize <= 0 {
		maxSize = DefaultMaxLogSizeMB
	}
	maxBackups := cfg.MaxLogBackups
	if maxBackups <= 0 {
		maxBackups = DefaultMaxLogBackups
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}, nil
}
