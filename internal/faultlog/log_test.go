package faultlog

import (
	"bytes"
	"context"
	"testing"

	pebblestore "github.com/rhurkes/rofka/internal/storage/pebble"
)

func openDB(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	return db
}

func newTestLog(t *testing.T) *Log {
	t.Helper()
	db := openDB(t, t.TempDir())
	t.Cleanup(func() { _ = db.Close() })
	l, err := Open(db)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func decodeFault(key string) AppendRecord {
	return AppendRecord{
		Fault:   Fault{Kind: KindProjectionDecode, Key: []byte(key), Reason: "bad status"},
		Payload: []byte(`{"status":"RETIRED"}`),
	}
}

func TestAppendAssignsSequential(t *testing.T) {
	l := newTestLog(t)
	seqs, err := l.Append(context.Background(), decodeFault("a"), decodeFault("b"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("unexpected seqs %v", seqs)
	}
	if l.LastSeq() != 2 {
		t.Fatalf("last seq %d", l.LastSeq())
	}
}

func TestAppendStampsTime(t *testing.T) {
	l := newTestLog(t)
	if _, err := l.Append(context.Background(), decodeFault("a")); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, _, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 || entries[0].Fault.AtMs == 0 {
		t.Fatalf("expected stamped entry, got %+v", entries)
	}
}

func TestAppendDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)
	l, err := Open(db)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	ctx := context.Background()
	if _, err := l.Append(ctx, decodeFault("a")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2 := openDB(t, dir)
	t.Cleanup(func() { _ = db2.Close() })
	l2, err := Open(db2)
	if err != nil {
		t.Fatalf("reopen log: %v", err)
	}
	seqs, err := l2.Append(ctx, decodeFault("b"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if seqs[0] != 2 {
		t.Fatalf("expected seq 2 after reopen, got %d", seqs[0])
	}
}

func TestReadWindowAndResume(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		if _, err := l.Append(ctx, decodeFault(k)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	first, next, err := l.Read(ReadOptions{Limit: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(first) != 2 || string(first[0].Fault.Key) != "a" || next != 3 {
		t.Fatalf("first page %+v next %d", first, next)
	}
	rest, next, err := l.Read(ReadOptions{Start: next})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rest) != 3 || string(rest[2].Fault.Key) != "e" || next != 0 {
		t.Fatalf("rest %+v next %d", rest, next)
	}
	if !bytes.Equal(rest[0].Payload, []byte(`{"status":"RETIRED"}`)) {
		t.Fatalf("payload %q", rest[0].Payload)
	}
}

func TestReadSkipsCorruptEntries(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()
	if _, err := l.Append(ctx, decodeFault("a"), decodeFault("b")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.db.Set(ctx, KeyEntry(1), []byte("garbage")); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	entries, _, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 || entries[0].Seq != 2 {
		t.Fatalf("expected only seq 2, got %+v", entries)
	}
}

func TestTrimToMax(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if _, err := l.Append(ctx, decodeFault("k")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	n, err := l.TrimToMax(ctx, 4)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if n != 6 {
		t.Fatalf("deleted %d want 6", n)
	}
	entries, _, _ := l.Read(ReadOptions{})
	if len(entries) != 4 || entries[0].Seq != 7 {
		t.Fatalf("unexpected survivors %+v", entries)
	}
	if n, _ := l.TrimToMax(ctx, 4); n != 0 {
		t.Fatalf("second trim deleted %d", n)
	}
	if n, _ := l.TrimToMax(ctx, 0); n != 0 {
		t.Fatalf("zero keep must not trim, deleted %d", n)
	}
}
