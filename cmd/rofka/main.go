package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/rhurkes/rofka/internal/cmd/client"
	"github.com/rhurkes/rofka/internal/cmd/run"
	cfgpkg "github.com/rhurkes/rofka/internal/config"
	logpkg "github.com/rhurkes/rofka/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rofka",
		Short:         "Kafka to embedded store status projection",
		Long:          "rofka ingests item-version records from Kafka into a local store, keeps a status projection next to the raw values, and reports entries by status.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the mode selected by --mode, ROFKA_MODE or the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, "")
		},
	}
	runCmd.Flags().String("mode", "", "Mode: ingest|query|reconcile")
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)

	for _, m := range []struct {
		mode  cfgpkg.Mode
		short string
	}{
		{cfgpkg.ModeIngest, "Consume the topic into the store until interrupted"},
		{cfgpkg.ModeQuery, "Print identifiers of projection entries matching the filter"},
		{cfgpkg.ModeReconcile, "Rebuild the projection family from raw values"},
	} {
		mode := m.mode
		c := &cobra.Command{
			Use:   string(mode),
			Short: m.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return execute(cmd, mode)
			},
		}
		addRunFlags(c)
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(clientcmd.Commands(apiURL)...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rofka:", err)
		os.Exit(1)
	}
}

func addRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("config", os.Getenv("ROFKA_CONFIG"), "Config file (.json, .yaml or .yml)")
	f.String("data-dir", "", "Store directory (if not specified, uses OS-specific application data directory)")
	f.StringSlice("brokers", nil, "Kafka seed brokers")
	f.String("topic", "", "Kafka topic")
	f.String("group", "", "Kafka consumer group id")
	f.String("fsync", "", "Fsync mode: always|interval|never")
	f.StringSlice("statuses", nil, "Statuses to report: APPROVED,INITIATED,UNPUBLISHED (UNPUBLISHED when neither --statuses nor --filter is set)")
	f.String("filter", "", "CEL filter over key, tcin, version, status")
	f.String("output", "", "Query output: text|json")
	f.String("http", "", "Admin HTTP listen address (ingest only)")
	f.String("grpc", "", "gRPC health listen address (ingest only)")
	f.Bool("reconcile-on-start", false, "Repair projections before running the mode")
	f.String("log-level", os.Getenv("ROFKA_LOG_LEVEL"), "Log level: debug|info|warn|error")
	f.String("log-format", os.Getenv("ROFKA_LOG_FORMAT"), "Log format: text|json (default text)")
}

// execute layers config file, ROFKA_* env and flags, then hands off to run.Run.
func execute(cmd *cobra.Command, mode cfgpkg.Mode) error {
	f := cmd.Flags()
	path, _ := f.GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return err
	}
	if err := cfgpkg.FromEnv(&cfg); err != nil {
		return err
	}

	if mode != "" {
		cfg.Mode = mode
	} else if f.Changed("mode") {
		s, _ := f.GetString("mode")
		if cfg.Mode, err = cfgpkg.ParseMode(s); err != nil {
			return err
		}
	}
	if f.Changed("data-dir") {
		cfg.DataDir, _ = f.GetString("data-dir")
	}
	if f.Changed("brokers") {
		cfg.Brokers, _ = f.GetStringSlice("brokers")
	}
	if f.Changed("topic") {
		cfg.Topic, _ = f.GetString("topic")
	}
	if f.Changed("group") {
		cfg.GroupID, _ = f.GetString("group")
	}
	if f.Changed("fsync") {
		cfg.Fsync, _ = f.GetString("fsync")
	}
	if f.Changed("statuses") {
		cfg.Statuses, _ = f.GetStringSlice("statuses")
	}
	if f.Changed("filter") {
		cfg.Filter, _ = f.GetString("filter")
	}
	if f.Changed("output") {
		cfg.Output, _ = f.GetString("output")
	}
	if f.Changed("http") {
		cfg.HTTPAddr, _ = f.GetString("http")
	}
	if f.Changed("grpc") {
		cfg.GRPCAddr, _ = f.GetString("grpc")
	}
	if f.Changed("reconcile-on-start") {
		cfg.ReconcileOnStart, _ = f.GetBool("reconcile-on-start")
	}

	level, _ := f.GetString("log-level")
	format, _ := f.GetString("log-format")
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "text"
	}
	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: level, Format: format})
	if err != nil {
		return err
	}
	// Redirect standard library logs to our logger
	logpkg.RedirectStdLog(logger)

	return run.Run(cmd.Context(), run.Options{Config: cfg, Logger: logger, Out: cmd.OutOrStdout()})
}

func apiURL() string {
	if v := os.Getenv("ROFKA_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
