package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rhurkes/rofka/internal/record"
	pebblestore "github.com/rhurkes/rofka/internal/storage/pebble"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrOpen wraps any failure to open the store directory.
	ErrOpen = errors.New("store: open failed")
	// ErrNotFound is returned by point reads for absent keys.
	ErrNotFound = errors.New("store: key not found")
	// ErrNilKey rejects writes without a key.
	ErrNilKey = errors.New("store: nil key")
)

// Store holds the raw and projection families and performs the dual write.
// Reads may run concurrently with writes; writes are serialized internally.
type Store struct {
	db     *pebblestore.DB
	mu     sync.Mutex
	tracer trace.Tracer
}

// WriteResult describes what a Write did to the projection family.
type WriteResult struct {
	// Projected is true when the value decoded and the projection was stored.
	Projected  bool
	Projection record.StatusProjection
	// DecodeErr explains why the projection was not stored. The raw write
	// still succeeded.
	DecodeErr error
}

// Open binds the families to an already opened database.
func Open(db *pebblestore.DB) *Store {
	return &Store{db: db, tracer: otel.Tracer("github.com/rhurkes/rofka/internal/store")}
}

// OpenDir opens (creating if absent) the database at opts.DataDir and binds
// the families. Failures wrap ErrOpen.
func OpenDir(opts pebblestore.Options) (*Store, error) {
	db, err := pebblestore.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, opts.DataDir, err)
	}
	return Open(db), nil
}

// DB exposes the underlying database for sibling families.
func (s *Store) DB() *pebblestore.DB { return s.db }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Write stores raw unchanged in the raw family and, when it decodes, its
// projection in the projection family, in one atomic batch. When raw does
// not decode, any previous projection for key is removed so the projection
// family never holds a value that disagrees with the raw family.
func (s *Store) Write(ctx context.Context, key, raw []byte) (WriteResult, error) {
	if key == nil {
		return WriteResult{}, ErrNilKey
	}
	ctx, span := s.tracer.Start(ctx, "store.Write", trace.WithAttributes(
		attribute.Int("rofka.key_bytes", len(key)),
		attribute.Int("rofka.value_bytes", len(raw)),
	))
	defer span.End()

	var res WriteResult
	var projBytes []byte
	p, err := record.DecodeProjection(raw)
	if err == nil {
		projBytes, err = p.Encode()
	}
	if err != nil {
		res.DecodeErr = err
	} else {
		res.Projected = true
		res.Projection = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewBatch()
	defer b.Close()

	// raw is staged first; the batch commits both or neither
	if err := b.Set(familyKey(rawPrefix, key), raw, nil); err != nil {
		return WriteResult{}, s.fail(span, fmt.Errorf("stage raw: %w", err))
	}
	pk := familyKey(projectionPrefix, key)
	if res.Projected {
		if err := b.Set(pk, projBytes, nil); err != nil {
			return WriteResult{}, s.fail(span, fmt.Errorf("stage projection: %w", err))
		}
	} else {
		if err := b.Delete(pk, nil); err != nil {
			return WriteResult{}, s.fail(span, fmt.Errorf("stage projection delete: %w", err))
		}
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return WriteResult{}, s.fail(span, fmt.Errorf("commit: %w", err))
	}
	span.SetAttributes(attribute.Bool("rofka.projected", res.Projected))
	return res, nil
}

func (s *Store) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// ReadRaw returns the exact bytes last written for key.
func (s *Store) ReadRaw(key []byte) ([]byte, error) {
	return s.get(familyKey(rawPrefix, key))
}

// ReadProjection returns the stored projection bytes for key.
func (s *Store) ReadProjection(key []byte) ([]byte, error) {
	return s.get(familyKey(projectionPrefix, key))
}

func (s *Store) get(k []byte) ([]byte, error) {
	v, err := s.db.Get(k)
	if errors.Is(err, pebblestore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}
