package faultlog

import (
	"context"

	"github.com/cockroachdb/pebble"
)

const trimBatch = 1024

// TrimToMax deletes the oldest entries until at most keep remain and returns
// how many were deleted. A non-positive keep disables trimming.
func (l *Log) TrimToMax(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	lower, upper := entryBounds()
	it, err := l.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return 0, err
	}
	defer it.Close()

	total := 0
	for ok := it.First(); ok; ok = it.Next() {
		total++
	}
	if err := it.Error(); err != nil {
		return 0, err
	}
	excess := total - keep
	if excess <= 0 {
		return 0, nil
	}

	deleted := 0
	ok := it.First()
	for ok && deleted < excess {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		b := l.db.NewBatch()
		n := 0
		for ok && n < trimBatch && deleted+n < excess {
			if err := b.Delete(it.Key(), nil); err != nil {
				b.Close()
				return deleted, err
			}
			n++
			ok = it.Next()
		}
		err := l.db.CommitBatch(ctx, b)
		b.Close()
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}
