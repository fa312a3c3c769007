package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects which pipeline a process run executes.
type Mode string

const (
	ModeIngest    Mode = "ingest"
	ModeQuery     Mode = "query"
	ModeReconcile Mode = "reconcile"
)

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeIngest, ModeQuery, ModeReconcile:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q; use ingest|query|reconcile", ErrInvalid, s)
	}
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration that reads and writes as "500ms" style text.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the top-level configuration loaded from file/env/flags.
type Config struct {
	Mode Mode `json:"mode" yaml:"mode" env:"MODE"`

	// Stream consumer
	Brokers     []string `json:"brokers" yaml:"brokers" env:"BROKERS" envSeparator:","`
	Topic       string   `json:"topic" yaml:"topic" env:"TOPIC"`
	GroupID     string   `json:"group_id" yaml:"group_id" env:"GROUP_ID"`
	PollTimeout Duration `json:"poll_timeout" yaml:"poll_timeout" env:"POLL_TIMEOUT"`

	// Storage
	DataDir          string   `json:"data_dir" yaml:"data_dir" env:"DATA_DIR"`
	Fsync            string   `json:"fsync" yaml:"fsync" env:"FSYNC"`
	FsyncInterval    Duration `json:"fsync_interval" yaml:"fsync_interval" env:"FSYNC_INTERVAL"`
	WriteRetries     int      `json:"write_retries" yaml:"write_retries" env:"WRITE_RETRIES"`
	RetryBackoff     Duration `json:"retry_backoff" yaml:"retry_backoff" env:"RETRY_BACKOFF"`
	ReconcileOnStart bool     `json:"reconcile_on_start" yaml:"reconcile_on_start" env:"RECONCILE_ON_START"`
	FaultLogMax      int      `json:"fault_log_max" yaml:"fault_log_max" env:"FAULT_LOG_MAX"`

	// Query
	Statuses []string `json:"statuses" yaml:"statuses" env:"STATUSES" envSeparator:","`
	Filter   string   `json:"filter" yaml:"filter" env:"FILTER"`
	Output   string   `json:"output" yaml:"output" env:"OUTPUT"`

	// Admin surfaces, disabled when empty
	HTTPAddr string `json:"http_addr" yaml:"http_addr" env:"HTTP_ADDR"`
	GRPCAddr string `json:"grpc_addr" yaml:"grpc_addr" env:"GRPC_ADDR"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		GroupID:       "rofka",
		PollTimeout:   Duration(500 * time.Millisecond),
		DataDir:       DefaultDataDir(),
		Fsync:         "always",
		FsyncInterval: Duration(5 * time.Millisecond),
		WriteRetries:  3,
		RetryBackoff:  Duration(50 * time.Millisecond),
		FaultLogMax:   100000,
		Output:        "text",
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// Default. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate checks that the configuration is usable for its mode.
func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalid)
	}
	switch c.Fsync {
	case "always", "interval", "never":
	default:
		return fmt.Errorf("%w: fsync must be always|interval|never, got %q", ErrInvalid, c.Fsync)
	}

	switch c.Mode {
	case ModeIngest:
		if len(c.Brokers) == 0 {
			return fmt.Errorf("%w: brokers are required for ingest", ErrInvalid)
		}
		if c.Topic == "" {
			return fmt.Errorf("%w: topic is required for ingest", ErrInvalid)
		}
		if c.GroupID == "" {
			return fmt.Errorf("%w: group_id is required for ingest", ErrInvalid)
		}
		if c.PollTimeout <= 0 {
			return fmt.Errorf("%w: poll_timeout must be positive", ErrInvalid)
		}
		if c.WriteRetries < 1 {
			return fmt.Errorf("%w: write_retries must be at least 1", ErrInvalid)
		}
	case ModeQuery:
		switch c.Output {
		case "text", "json":
		default:
			return fmt.Errorf("%w: output must be text|json, got %q", ErrInvalid, c.Output)
		}
	}
	return nil
}
