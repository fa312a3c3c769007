// Package run exposes the shared Run entrypoint used by the CLI. The
// configured mode selects one pipeline per process run: ingest (stream into
// the store, with the optional admin servers), query (scan projections and
// print matching identifiers) or reconcile (repair projections from raw).
//
// Example:
//
//	cfg := config.Default()
//	cfg.Mode = config.ModeQuery
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = run.Run(ctx, run.Options{Config: cfg})
package run
