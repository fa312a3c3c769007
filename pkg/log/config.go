package log

import (
	"fmt"
	"strings"
)

// Config declares how a process-wide logger is built.
type Config struct {
	Level  string   // debug|info|warn|error
	Format string   // text|json
	Output string   // console (default), null, or a file path
	Redact []string // field keys whose values are replaced with [REDACTED]
}

// ApplyConfig builds a logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var output Output
	switch cfg.Output {
	case "", "console", "stderr":
		output = NewConsoleOutput()
	case "null", "none":
		output = NullOutput{}
	default:
		fo, err := NewFileOutput(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = fo
	}

	return NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(output),
		WithRedactions(cfg.Redact...),
	), nil
}
