// Package logging builds the zap loggers used across the application.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level enumerates supported logging granularities.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format enumerates supported logger output encodings.
type Format string

const (
	FormatConsole    Format = "console"
	FormatStructured Format = "structured"
)

var levelMapping = map[Level]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

var formatEncoding = map[Format]string{
	FormatConsole:    "console",
	FormatStructured: "json",
}

// Options selects the logger configuration.
type Options struct {
	Level  Level
	Format Format
	// Verbose forces debug level regardless of Level.
	Verbose bool
	// OutputPaths overrides the default of standard error.
	OutputPaths []string
}

// New produces a zap.Logger honoring the requested level and format.
func New(opts Options) (*zap.Logger, error) {
	level := Level(strings.ToLower(strings.TrimSpace(string(opts.Level))))
	if opts.Verbose {
		level = LevelDebug
	}
	zapLevel, ok := levelMapping[level]
	if !ok {
		return nil, fmt.Errorf("unsupported log level: %s", opts.Level)
	}

	encoding, ok := formatEncoding[Format(strings.ToLower(strings.TrimSpace(string(opts.Format))))]
	if !ok {
		return nil, fmt.Errorf("unsupported log format: %s", opts.Format)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = encoding
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
