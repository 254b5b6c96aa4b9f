package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the bot's zerolog logger. Every line passes through the
// redactor when redaction is on, so the bot token never reaches a sink.
type Logger struct {
	logger   zerolog.Logger
	file     *os.File
	redactor *Redactor
}

// Config holds logger configuration
type Config struct {
	Level     string    // debug, info, warn, error; anything else means info
	File      string    // optional append-only copy of the log
	Pretty    bool      // human readable console lines instead of JSON
	Redaction bool      // mask bot tokens and similar secrets
	Secrets   []string  // literal values to mask, e.g. the configured bot token
	Output    io.Writer // console sink, stdout when nil
}

// New creates a logger writing to the console and, when set, to cfg.File
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	console := cfg.Output
	if console == nil {
		console = os.Stdout
	}
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.Output != nil,
		}
	}

	l := &Logger{}
	sink := console

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		l.file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = io.MultiWriter(console, l.file)
	}

	if cfg.Redaction {
		l.redactor = NewRedactor()
		for _, secret := range cfg.Secrets {
			l.redactor.AddLiteral(secret)
		}
		sink = l.redactor.Wrap(sink)
	}

	l.logger = zerolog.New(sink).Level(level).With().Timestamp().Logger()

	return l, nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// GetZerolog returns the underlying zerolog.Logger, for components
// that derive child loggers
func (l *Logger) GetZerolog() zerolog.Logger {
	return l.logger
}
