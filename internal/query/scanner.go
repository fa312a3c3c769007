package query

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rhurkes/rofka/internal/record"
	"github.com/rhurkes/rofka/internal/store"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

// Projections is the read side of the store the scanner needs.
type Projections interface {
	ScanProjection() (*store.Scan, error)
}

// Match is one reported entry.
type Match struct {
	Key        []byte                  `json:"-"`
	ID         string                  `json:"id"`
	Projection record.StatusProjection `json:"projection"`
}

// RecordError is a per-entry failure that did not stop the scan.
type RecordError struct {
	Key []byte
	Err error
}

func (e RecordError) Error() string { return fmt.Sprintf("%s: %v", KeyText(e.Key), e.Err) }
func (e RecordError) Unwrap() error { return e.Err }

// Result summarizes a scan. Matches is only filled by Collect.
type Result struct {
	Matches []Match
	Errors  []RecordError
	Scanned int
	Matched int
}

// Scanner filters the projection family.
type Scanner struct {
	src  Projections
	pred Predicate
	log  logpkg.Logger
}

// NewScanner builds a Scanner. A nil pred uses Default; a nil logger discards.
func NewScanner(src Projections, pred Predicate, logger logpkg.Logger) *Scanner {
	if pred == nil {
		pred = Default()
	}
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &Scanner{src: src, pred: pred, log: logger.WithComponent("query")}
}

// Scan walks a snapshot of the projection family in key order and calls emit
// for each matching entry. An error from emit, a cancelled ctx or an
// iteration failure stops the scan; decode and predicate failures do not.
func (s *Scanner) Scan(ctx context.Context, emit func(Match) error) (Result, error) {
	var res Result
	sc, err := s.src.ScanProjection()
	if err != nil {
		return res, fmt.Errorf("query: open scan: %w", err)
	}
	defer sc.Close()

	for sc.Next() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++
		key := sc.Key()
		p, err := record.DecodeProjection(sc.Value())
		if err == nil {
			var ok bool
			ok, err = s.pred.Match(key, p)
			if err == nil && !ok {
				continue
			}
		}
		if err != nil {
			res.Errors = append(res.Errors, RecordError{Key: key, Err: err})
			s.log.Warn("skipping projection entry", logpkg.Str("key", KeyText(key)), logpkg.Err(err))
			continue
		}
		res.Matched++
		if err := emit(Match{Key: key, ID: KeyText(key), Projection: p}); err != nil {
			return res, err
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("query: scan: %w", err)
	}
	return res, nil
}

// Collect runs Scan and gathers every match into the result.
func (s *Scanner) Collect(ctx context.Context) (Result, error) {
	var matches []Match
	res, err := s.Scan(ctx, func(m Match) error {
		matches = append(matches, m)
		return nil
	})
	res.Matches = matches
	return res, err
}

// KeyText renders a key as text when it is valid UTF-8 without control
// characters and does not itself start with "hex:". Every other key is
// rendered as "hex:" plus lowercase hex, so each key has exactly one
// rendering and text output stays one identifier per line.
func KeyText(key []byte) string {
	if printableKey(key) {
		return string(key)
	}
	return hexPrefix + hex.EncodeToString(key)
}

// ParseKeyText reverses KeyText.
func ParseKeyText(s string) ([]byte, error) {
	if h, ok := strings.CutPrefix(s, hexPrefix); ok {
		return hex.DecodeString(h)
	}
	return []byte(s), nil
}

const hexPrefix = "hex:"

func printableKey(key []byte) bool {
	if !utf8.Valid(key) || bytes.HasPrefix(key, []byte(hexPrefix)) {
		return false
	}
	for _, r := range string(key) {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
