// Package store is the storage engine: one Pebble database holding a raw
// family (exact event bytes by key) and a projection family
// (tcin_version_status) derived from it.
//
// Write stages the raw put before the projection put in a single batch, so
// the raw family is never behind the projection family. A value that does
// not decode keeps its raw entry and has no projection. Reconcile recomputes
// the projection family from the raw family, which is always the source of
// truth.
//
//	s, err := store.OpenDir(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
//	if err != nil { /* fatal: errors.Is(err, store.ErrOpen) */ }
//	defer s.Close()
//	res, err := s.Write(ctx, []byte("123:1"), payload)
//	raw, err := s.ReadRaw([]byte("123:1"))
//	sc, err := s.ScanProjection()
package store
