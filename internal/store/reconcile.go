package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/rhurkes/rofka/internal/record"
	pebblestore "github.com/rhurkes/rofka/internal/storage/pebble"
	"go.opentelemetry.io/otel/attribute"
)

// reconcileBatch bounds how many repairs are committed together.
const reconcileBatch = 1024

// ReconcileReport counts what Reconcile found and fixed.
type ReconcileReport struct {
	Scanned     int // raw entries examined
	Created     int // projections that were missing
	Updated     int // projections that disagreed with raw
	Removed     int // projections whose raw value no longer decodes
	Orphans     int // projections with no raw entry
	Undecodable int // raw entries that do not decode (no projection kept)
}

// Repaired is the number of projection entries changed.
func (r ReconcileReport) Repaired() int { return r.Created + r.Updated + r.Removed + r.Orphans }

// Reconcile recomputes the projection family from the raw family, which is
// the source of truth. Writes are held off for the duration.
func (s *Store) Reconcile(ctx context.Context) (ReconcileReport, error) {
	ctx, span := s.tracer.Start(ctx, "store.Reconcile")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var rep ReconcileReport
	fixes := &fixer{ctx: ctx, db: s.db}
	defer fixes.close()

	if err := s.reconcileRaw(ctx, fixes, &rep); err != nil {
		return rep, s.fail(span, err)
	}
	if err := s.reconcileOrphans(ctx, fixes, &rep); err != nil {
		return rep, s.fail(span, err)
	}
	if err := fixes.flush(); err != nil {
		return rep, s.fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("rofka.scanned", rep.Scanned),
		attribute.Int("rofka.repaired", rep.Repaired()),
	)
	return rep, nil
}

func (s *Store) reconcileRaw(ctx context.Context, fixes *fixer, rep *ReconcileReport) error {
	lower, upper := familyBounds(rawPrefix)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer it.Close()

	for ok := it.First(); ok; ok = it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.Scanned++
		key := it.Key()[len(rawPrefix):]
		pk := familyKey(projectionPrefix, key)

		current, err := s.db.Get(pk)
		exists := err == nil
		if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
			return fmt.Errorf("read projection: %w", err)
		}

		want, ok := canonicalProjection(it.Value())
		switch {
		case !ok && exists:
			rep.Undecodable++
			rep.Removed++
			err = fixes.del(pk)
		case !ok:
			rep.Undecodable++
		case !exists:
			rep.Created++
			err = fixes.set(pk, want)
		case !bytes.Equal(current, want):
			rep.Updated++
			err = fixes.set(pk, want)
		}
		if err != nil {
			return err
		}
	}
	return it.Error()
}

func (s *Store) reconcileOrphans(ctx context.Context, fixes *fixer, rep *ReconcileReport) error {
	lower, upper := familyBounds(projectionPrefix)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer it.Close()

	for ok := it.First(); ok; ok = it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := it.Key()[len(projectionPrefix):]
		_, err := s.db.Get(familyKey(rawPrefix, key))
		if err == nil {
			continue
		}
		if !errors.Is(err, pebblestore.ErrNotFound) {
			return fmt.Errorf("read raw: %w", err)
		}
		rep.Orphans++
		if err := fixes.del(it.Key()); err != nil {
			return err
		}
	}
	return it.Error()
}

func canonicalProjection(raw []byte) ([]byte, bool) {
	p, err := record.DecodeProjection(raw)
	if err != nil {
		return nil, false
	}
	b, err := p.Encode()
	if err != nil {
		return nil, false
	}
	return b, true
}

// fixer accumulates repairs and commits them in bounded batches.
type fixer struct {
	ctx context.Context
	db  *pebblestore.DB
	b   *pebble.Batch
	n   int
}

func (f *fixer) set(k, v []byte) error {
	f.ensure()
	if err := f.b.Set(k, v, nil); err != nil {
		return err
	}
	return f.count()
}

func (f *fixer) del(k []byte) error {
	f.ensure()
	if err := f.b.Delete(k, nil); err != nil {
		return err
	}
	return f.count()
}

func (f *fixer) ensure() {
	if f.b == nil {
		f.b = f.db.NewBatch()
	}
}

func (f *fixer) count() error {
	f.n++
	if f.n >= reconcileBatch {
		return f.flush()
	}
	return nil
}

func (f *fixer) flush() error {
	if f.b == nil || f.n == 0 {
		return nil
	}
	err := f.db.CommitBatch(f.ctx, f.b)
	f.close()
	if err != nil {
		return fmt.Errorf("commit repairs: %w", err)
	}
	return nil
}

func (f *fixer) close() {
	if f.b != nil {
		_ = f.b.Close()
		f.b = nil
	}
	f.n = 0
}
