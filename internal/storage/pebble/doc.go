// Package pebblestore provides a thin wrapper around Pebble with fsync policy,
// snapshots, batches, a metrics hook and log routing.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	    Logger:  logger,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic updates with batches
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(ctx, b)
//	b.Close()
//
//	v, err := db.Get([]byte("k")) // pebblestore.ErrNotFound when absent
package pebblestore
