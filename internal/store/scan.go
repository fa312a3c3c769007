package store

import (
	"github.com/cockroachdb/pebble"
)

// Scan is a lazy, key-ordered iterator over one family as of the moment it
// was opened. Writes made after that moment are not visible. Callers must
// Close it.
//
//	sc, err := s.ScanProjection()
//	if err != nil { /* handle */ }
//	defer sc.Close()
//	for sc.Next() {
//	    use(sc.Key(), sc.Value())
//	}
//	if err := sc.Err(); err != nil { /* handle */ }
type Scan struct {
	snap    *pebble.Snapshot
	it      *pebble.Iterator
	prefix  int
	started bool
}

// ScanProjection iterates the whole projection family.
func (s *Store) ScanProjection() (*Scan, error) {
	return s.scan(projectionPrefix)
}

// ScanRaw iterates the whole raw family.
func (s *Store) ScanRaw() (*Scan, error) {
	return s.scan(rawPrefix)
}

func (s *Store) scan(prefix []byte) (*Scan, error) {
	lower, upper := familyBounds(prefix)
	snap := s.db.NewSnapshot()
	it, err := snap.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		_ = snap.Close()
		return nil, err
	}
	return &Scan{snap: snap, it: it, prefix: len(prefix)}, nil
}

// Next advances to the next entry and reports whether there is one.
func (sc *Scan) Next() bool {
	if !sc.started {
		sc.started = true
		return sc.it.First()
	}
	return sc.it.Next()
}

// Key returns a copy of the current entry's key without the family prefix.
func (sc *Scan) Key() []byte {
	return append([]byte(nil), sc.it.Key()[sc.prefix:]...)
}

// Value returns a copy of the current entry's value.
func (sc *Scan) Value() []byte {
	return append([]byte(nil), sc.it.Value()...)
}

// Err returns the first iteration error, if any.
func (sc *Scan) Err() error { return sc.it.Error() }

// Close releases the iterator and its snapshot.
func (sc *Scan) Close() error {
	err := sc.it.Close()
	if serr := sc.snap.Close(); err == nil {
		err = serr
	}
	return err
}
