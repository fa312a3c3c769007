package faultlog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pebblestore "github.com/rhurkes/rofka/internal/storage/pebble"
)

// Kind classifies a fault.
type Kind string

const (
	// KindProjectionDecode marks a value stored raw whose projection could not be derived.
	KindProjectionDecode Kind = "projection_decode"
	// KindWriteFailed marks a message dropped after the dual write kept failing.
	KindWriteFailed Kind = "write_failed"
)

// Fault is the header of a fault record.
type Fault struct {
	Kind     Kind   `json:"kind"`
	Key      []byte `json:"key,omitempty"`
	Reason   string `json:"reason"`
	AtMs     int64  `json:"at_ms"`
	Attempts int    `json:"attempts,omitempty"`
}

// Entry is a fault as read back, with its sequence and payload.
type Entry struct {
	Seq     uint64
	Fault   Fault
	Payload []byte
}

// AppendRecord is a fault plus the offending value, if any.
type AppendRecord struct {
	Fault   Fault
	Payload []byte
}

// Log is the fault family. Safe for concurrent use.
type Log struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
	now     func() time.Time
}

// Open loads the last sequence from metadata, if any.
func Open(db *pebblestore.DB) (*Log, error) {
	l := &Log{db: db, now: time.Now}
	meta, err := db.Get(metaKey)
	switch {
	case err == nil && len(meta) >= 8:
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	case err != nil && !errors.Is(err, pebblestore.ErrNotFound):
		return nil, fmt.Errorf("faultlog: load meta: %w", err)
	}
	return l, nil
}

// LastSeq is the sequence of the most recent append.
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}

// Append stores recs as one atomic batch and returns their sequences.
// A zero AtMs is stamped with the current time.
func (l *Log) Append(ctx context.Context, recs ...AppendRecord) ([]uint64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	seq := l.lastSeq
	seqs := make([]uint64, len(recs))
	for i, r := range recs {
		if r.Fault.AtMs == 0 {
			r.Fault.AtMs = l.now().UnixMilli()
		}
		header, err := json.Marshal(r.Fault)
		if err != nil {
			return nil, fmt.Errorf("faultlog: encode header: %w", err)
		}
		seq++
		if err := b.Set(KeyEntry(seq), encodeRecord(header, r.Payload), nil); err != nil {
			return nil, err
		}
		seqs[i] = seq
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(metaKey, meta[:], nil); err != nil {
		return nil, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return nil, err
	}
	l.lastSeq = seq
	return seqs, nil
}
