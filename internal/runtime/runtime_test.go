package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	cfgpkg "github.com/rhurkes/rofka/internal/config"
	"github.com/rhurkes/rofka/internal/faultlog"
	"github.com/rhurkes/rofka/internal/store"
)

func testConfig(t *testing.T) cfgpkg.Config {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.DataDir = t.TempDir()
	cfg.Fsync = "never"
	return cfg
}

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatalf("closed runtime must be unhealthy")
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenFailureWrapsErrOpen(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(cfg.DataDir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(Options{Config: cfg}); !errors.Is(err, store.ErrOpen) {
		t.Fatalf("want ErrOpen, got %v", err)
	}
}

func TestOpenRejectsBadFsync(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fsync = "sometimes"
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatalf("expected fsync error")
	}
}

func TestFamiliesShareStoreAndMetrics(t *testing.T) {
	rt, err := Open(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	ctx := context.Background()

	if _, err := rt.Store().Write(ctx, []byte("k"), []byte(`{"tcin":"1","version":1,"status":"APPROVED"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := rt.Faults().Append(ctx, faultlog.AppendRecord{Fault: faultlog.Fault{Kind: faultlog.KindWriteFailed, Reason: "x"}}); err != nil {
		t.Fatalf("append fault: %v", err)
	}
	if _, err := rt.Store().ReadRaw([]byte("k")); err != nil {
		t.Fatalf("read: %v", err)
	}

	m := rt.Metrics()
	if m.Commits != 2 || m.Reads == 0 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	// fault entries must not leak into the projection family
	sc, err := rt.Store().ScanProjection()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	defer sc.Close()
	n := 0
	for sc.Next() {
		n++
	}
	if n != 1 {
		t.Fatalf("want 1 projection entry, got %d", n)
	}
}
