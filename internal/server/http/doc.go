// Package httpserver serves the read-only admin API: health, ingest and
// storage counters, point reads of both families, the status audit and the
// fault log.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	s := httpserver.New(rt, logger, httpserver.WithIngestStats(consumer.Stats))
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
