package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/rhurkes/rofka/internal/config"
	"github.com/rhurkes/rofka/internal/ingest"
	"github.com/rhurkes/rofka/internal/runtime"
	"github.com/rhurkes/rofka/internal/telemetry"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

// small wrapper to allow testing
var getenv = os.Getenv

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// Options for one process run.
type Options struct {
	Config cfgpkg.Config
	// Logger defaults to one built from ROFKA_LOG_LEVEL and ROFKA_LOG_FORMAT.
	Logger logpkg.Logger
	// Out receives query results and reconcile reports. Defaults to stdout.
	Out io.Writer
	// Source overrides the Kafka source in ingest mode.
	Source ingest.Source
}

// Run executes the configured mode and blocks until it finishes or ctx is
// cancelled. A store that cannot be opened yields an error wrapping
// store.ErrOpen.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := opts.Logger
	if logger == nil {
		logger = processLogger()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	shutdown, err := telemetry.Setup(sctx, "rofka")
	if err != nil {
		logger.Warn("tracing disabled", logpkg.Err(err))
	}
	defer func() { _ = shutdown(context.Background()) }()

	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("starting rofka",
		logpkg.Str("mode", string(cfg.Mode)),
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("fsync", cfg.Fsync),
	)

	if cfg.ReconcileOnStart && cfg.Mode != cfgpkg.ModeReconcile {
		if _, err := reconcile(sctx, rt, logger, nil); err != nil {
			return err
		}
	}

	switch cfg.Mode {
	case cfgpkg.ModeIngest:
		return runIngest(sctx, rt, cfg, logger, opts.Source)
	case cfgpkg.ModeQuery:
		return runQuery(sctx, rt, cfg, logger, out)
	case cfgpkg.ModeReconcile:
		_, err := reconcile(sctx, rt, logger, out)
		return err
	default:
		return fmt.Errorf("%w: unknown mode %q", cfgpkg.ErrInvalid, cfg.Mode)
	}
}

// processLogger builds the process-wide logger from env; defaults: level=info, format=text.
func processLogger() logpkg.Logger {
	cfg := &logpkg.Config{
		Level:  getenvDefault("ROFKA_LOG_LEVEL", "info"),
		Format: getenvDefault("ROFKA_LOG_FORMAT", "text"),
	}
	logger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
			lvl = l
		}
		logger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}), logpkg.WithOutput(logpkg.NewConsoleOutput()))
	}
	logpkg.RedirectStdLog(logger)
	return logger
}
