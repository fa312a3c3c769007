package query

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rhurkes/rofka/internal/record"
	"github.com/rhurkes/rofka/internal/store"
	pebblestore "github.com/rhurkes/rofka/internal/storage/pebble"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenDir(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func put(t *testing.T, s *store.Store, key, tcin string, version int, status string) {
	t.Helper()
	v := `{"tcin":"` + tcin + `","version":` + strconv.Itoa(version) + `,"status":"` + status + `","source_system":"s","source_timestamp":"t","created_timestamp":"t"}`
	if _, err := s.Write(context.Background(), []byte(key), []byte(v)); err != nil {
		t.Fatalf("write %s: %v", key, err)
	}
}

func ids(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestScanDefaultFilter(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "A", "1", 1, "APPROVED")
	put(t, s, "B", "2", 1, "INITIATED")
	put(t, s, "C", "3", 1, "UNPUBLISHED")
	put(t, s, "D", "4", 1, "UNPUBLISHED")

	res, err := NewScanner(s, nil, nil).Collect(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := strings.Join(ids(res.Matches), ","); got != "C,D" {
		t.Fatalf("got %s want C,D", got)
	}
	if res.Scanned != 4 || res.Matched != 2 || len(res.Errors) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestScanVersionsAreDistinct(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "123:1", "123", 1, "UNPUBLISHED")
	put(t, s, "123:2", "123", 2, "APPROVED")

	res, err := NewScanner(s, Default(), nil).Collect(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := strings.Join(ids(res.Matches), ","); got != "123:1" {
		t.Fatalf("got %q want 123:1", got)
	}
}

func TestScanCorruptEntryIsReported(t *testing.T) {
	s := newTestStore(t)
	const n = 5
	for i := 0; i < n; i++ {
		put(t, s, "k"+strconv.Itoa(i), strconv.Itoa(i), 1, "UNPUBLISHED")
	}
	if err := s.DB().Set(context.Background(), []byte(store.ProjectionFamily+"/k2x"), []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}

	res, err := NewScanner(s, nil, nil).Collect(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Matches) != n {
		t.Fatalf("want %d matches, got %d", n, len(res.Matches))
	}
	if len(res.Errors) != 1 || string(res.Errors[0].Key) != "k2x" {
		t.Fatalf("want one error for k2x, got %+v", res.Errors)
	}
	if !errors.Is(res.Errors[0], record.ErrDecode) {
		t.Fatalf("want decode error, got %v", res.Errors[0].Err)
	}
}

func TestScanEmitErrorStops(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "a", "1", 1, "UNPUBLISHED")
	put(t, s, "b", "2", 1, "UNPUBLISHED")
	stop := errors.New("stop")
	calls := 0
	_, err := NewScanner(s, nil, nil).Scan(context.Background(), func(Match) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("want stop after one emit, got %v calls=%d", err, calls)
	}
}

func TestScanCancelled(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "a", "1", 1, "UNPUBLISHED")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewScanner(s, nil, nil).Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestKeyText(t *testing.T) {
	cases := []struct {
		key  []byte
		want string
	}{
		{[]byte("123:1"), "123:1"},
		{[]byte{}, ""},
		{[]byte{0xff, 0x00, 0x10}, "hex:ff0010"},
		{[]byte{0xfe, 0x01}, "hex:fe01"},
		{[]byte("hex:fe01"), "hex:6865783a66653031"},
		{[]byte("hex:zz"), "hex:6865783a7a7a"},
		{[]byte("a\nb"), "hex:610a62"},
		{[]byte("tab\there"), "hex:7461620968657265"},
		{[]byte("café:1"), "café:1"},
	}
	for _, c := range cases {
		got := KeyText(c.key)
		if got != c.want {
			t.Fatalf("KeyText(%x) = %q want %q", c.key, got, c.want)
		}
		back, err := ParseKeyText(got)
		if err != nil || !bytes.Equal(back, c.key) {
			t.Fatalf("ParseKeyText(%q) = %x, %v want %x", got, back, err, c.key)
		}
	}
	if _, err := ParseKeyText("hex:zz"); err == nil {
		t.Fatalf("expected error for malformed hex")
	}
}

func TestTextOutputOneLinePerMatch(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "a\nb", "1", 1, "UNPUBLISHED")
	put(t, s, "hex:fe01", "2", 1, "UNPUBLISHED")
	var out bytes.Buffer
	if _, err := NewScanner(s, nil, nil).Scan(context.Background(), Emitter(&out, FormatText)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := out.String(); got != "hex:610a62\nhex:6865783a66653031\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestScanBinaryKeyFallsBackToHex(t *testing.T) {
	s := newTestStore(t)
	put(t, s, string([]byte{0xfe, 0x01}), "1", 1, "UNPUBLISHED")
	res, err := NewScanner(s, nil, nil).Collect(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].ID != "hex:fe01" {
		t.Fatalf("unexpected matches %+v", res.Matches)
	}
}

func TestEmitterFormats(t *testing.T) {
	m := Match{Key: []byte("C"), ID: "C", Projection: record.StatusProjection{TCIN: "3", Version: 1, Status: record.StatusUnpublished}}

	var text bytes.Buffer
	if err := Emitter(&text, FormatText)(m); err != nil {
		t.Fatalf("text: %v", err)
	}
	if text.String() != "C\n" {
		t.Fatalf("text output %q", text.String())
	}

	var js bytes.Buffer
	if err := Emitter(&js, FormatJSON)(m); err != nil {
		t.Fatalf("json: %v", err)
	}
	want := `{"id":"C","projection":{"tcin":"3","version":1,"status":"UNPUBLISHED"}}` + "\n"
	if js.String() != want {
		t.Fatalf("json output %q want %q", js.String(), want)
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
