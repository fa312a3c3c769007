// Package ingest runs the stream consumer: it polls a Source, drops
// messages without a key or value, and hands the rest to the store's dual
// write with bounded retries. It never commits offsets, so every restart
// replays the topic from the earliest offset; overwrite semantics make the
// replay idempotent.
package ingest
