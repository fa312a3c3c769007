package faultlog

import (
	"encoding/json"

	"github.com/cockroachdb/pebble"
)

// ReadOptions selects a window of the log.
type ReadOptions struct {
	// Start is the first sequence to return. Zero begins at the oldest entry.
	Start uint64
	// Limit caps the number of entries. Zero means no limit.
	Limit int
}

func entryBounds() (lower, upper []byte) {
	lower = append([]byte(nil), entryPrefix...)
	upper = append([]byte(nil), entryPrefix...)
	upper[len(upper)-1]++
	return lower, upper
}

// Read returns entries in sequence order from opts.Start, and the sequence to
// resume from (zero when the log is exhausted). Entries that fail their
// checksum or whose header does not decode are skipped.
func (l *Log) Read(opts ReadOptions) ([]Entry, uint64, error) {
	lower, upper := entryBounds()
	it, err := l.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, 0, err
	}
	defer it.Close()

	var out []Entry
	ok := it.First()
	if opts.Start > 0 {
		ok = it.SeekGE(KeyEntry(opts.Start))
	}
	for ; ok && (opts.Limit <= 0 || len(out) < opts.Limit); ok = it.Next() {
		header, payload, valid := decodeRecord(it.Value())
		if !valid {
			continue
		}
		var f Fault
		if err := json.Unmarshal(header, &f); err != nil {
			continue
		}
		out = append(out, Entry{Seq: seqFromKey(it.Key()), Fault: f, Payload: payload})
	}
	var next uint64
	if ok {
		next = seqFromKey(it.Key())
	}
	return out, next, it.Error()
}
