// Package log provides rofka's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library's
// slog through a bridge handler that routes records into our own
// formatter/output pipeline, so output looks the same whether a record
// came from our facade, from slog, or from a redirected *log.Logger.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("ingest"), log.Str("topic", "item-versions"))
//	l.Info("consumer started", log.Dur("poll", 500*time.Millisecond))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or
// JSON format, console/null/file output, redacted keys).
//
// # Interop
//
// RedirectStdLog points the standard library's default logger at a Logger,
// and ToStdLogger returns a *log.Logger that writes through one.
package log
