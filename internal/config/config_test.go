package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.PollTimeout.Std() != 500*time.Millisecond {
		t.Fatalf("default poll timeout: %v", cfg.PollTimeout.Std())
	}
	if cfg.GroupID != "rofka" {
		t.Fatalf("default group id")
	}
	if len(cfg.Statuses) != 0 || cfg.Filter != "" {
		t.Fatalf("default query selection must be empty: %v %q", cfg.Statuses, cfg.Filter)
	}
	if cfg.WriteRetries != 3 {
		t.Fatalf("default retries")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rofka.json")
	data := []byte(`{"mode":"ingest","brokers":["b1:9092","b2:9092"],"topic":"item-versions","poll_timeout":"250ms","write_retries":5}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeIngest || cfg.Topic != "item-versions" || len(cfg.Brokers) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.PollTimeout.Std() != 250*time.Millisecond {
		t.Fatalf("poll timeout: %v", cfg.PollTimeout.Std())
	}
	if cfg.WriteRetries != 5 {
		t.Fatalf("retries: %d", cfg.WriteRetries)
	}
	// untouched fields keep defaults
	if cfg.GroupID != "rofka" {
		t.Fatalf("group id default lost")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rofka.yaml")
	data := []byte("mode: query\nstatuses: [UNPUBLISHED, INITIATED]\noutput: json\nretry_backoff: 1s\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeQuery || cfg.Output != "json" || len(cfg.Statuses) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.RetryBackoff.Std() != time.Second {
		t.Fatalf("retry backoff: %v", cfg.RetryBackoff.Std())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("ROFKA_MODE", "ingest")
	t.Setenv("ROFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ROFKA_TOPIC", "items")
	t.Setenv("ROFKA_POLL_TIMEOUT", "2s")
	t.Setenv("ROFKA_RECONCILE_ON_START", "true")
	if err := FromEnv(&cfg); err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Mode != ModeIngest {
		t.Fatalf("env override mode")
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "k2:9092" {
		t.Fatalf("env override brokers: %v", cfg.Brokers)
	}
	if cfg.PollTimeout.Std() != 2*time.Second {
		t.Fatalf("env override poll timeout")
	}
	if !cfg.ReconcileOnStart {
		t.Fatalf("env override bool")
	}
	if cfg.GroupID != "rofka" {
		t.Fatalf("unset env must keep default")
	}
}

func TestValidate(t *testing.T) {
	ingest := Default()
	ingest.Mode = ModeIngest
	ingest.Brokers = []string{"localhost:9092"}
	ingest.Topic = "items"

	query := Default()
	query.Mode = ModeQuery

	tests := []struct {
		name    string
		mutate  func(c *Config)
		base    Config
		wantErr bool
	}{
		{name: "valid ingest", base: ingest, mutate: func(c *Config) {}},
		{name: "valid query", base: query, mutate: func(c *Config) {}},
		{name: "missing mode", base: query, mutate: func(c *Config) { c.Mode = "" }, wantErr: true},
		{name: "unknown mode", base: query, mutate: func(c *Config) { c.Mode = "replay" }, wantErr: true},
		{name: "ingest without brokers", base: ingest, mutate: func(c *Config) { c.Brokers = nil }, wantErr: true},
		{name: "ingest without topic", base: ingest, mutate: func(c *Config) { c.Topic = "" }, wantErr: true},
		{name: "ingest zero retries", base: ingest, mutate: func(c *Config) { c.WriteRetries = 0 }, wantErr: true},
		{name: "query bad output", base: query, mutate: func(c *Config) { c.Output = "csv" }, wantErr: true},
		{name: "query filter only", base: query, mutate: func(c *Config) { c.Filter = `status == "APPROVED"` }},
		{name: "bad fsync", base: query, mutate: func(c *Config) { c.Fsync = "sometimes" }, wantErr: true},
		{name: "reconcile needs no brokers", base: query, mutate: func(c *Config) { c.Mode = ModeReconcile }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.base
			c.Brokers = append([]string(nil), tt.base.Brokers...)
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("want ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Query "); err != nil || m != ModeQuery {
		t.Fatalf("parse query: %v %v", m, err)
	}
	if _, err := ParseMode("both"); err == nil {
		t.Fatalf("expected error")
	}
}
