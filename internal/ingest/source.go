package ingest

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Poll after the source has been closed.
var ErrClosed = errors.New("ingest: source closed")

// Message is one record read from the stream. A nil Key or Value means the
// record did not carry one.
type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int32
	Offset    int64
}

// Source yields messages one at a time.
type Source interface {
	// Poll waits up to wait for the next message. ok is false when the wait
	// elapsed without a message.
	Poll(ctx context.Context, wait time.Duration) (msg Message, ok bool, err error)
	Close()
}
