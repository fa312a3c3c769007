package runtime

import (
	"context"
	"errors"
	"fmt"

	cfgpkg "github.com/rhurkes/rofka/internal/config"
	"github.com/rhurkes/rofka/internal/faultlog"
	pebblestore "github.com/rhurkes/rofka/internal/storage/pebble"
	"github.com/rhurkes/rofka/internal/store"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	// Logger receives storage engine logs. Optional.
	Logger logpkg.Logger
}

// Runtime owns the open store and the families built on it.
type Runtime struct {
	store   *store.Store
	faults  *faultlog.Log
	metrics *StorageMetrics
	config  cfgpkg.Config
}

// Open opens the store at Config.DataDir, creating it if absent. A failure
// to open the directory wraps store.ErrOpen.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return nil, err
	}
	metrics := &StorageMetrics{}
	st, err := store.OpenDir(pebblestore.Options{
		DataDir:       cfg.DataDir,
		Fsync:         fsync,
		FsyncInterval: cfg.FsyncInterval.Std(),
		Metrics:       metrics,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	faults, err := faultlog.Open(st.DB())
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &Runtime{store: st, faults: faults, metrics: metrics, config: cfg}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}

// CheckHealth verifies the store is open and readable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.store == nil {
		return errors.New("store not open")
	}
	sc, err := r.store.ScanRaw()
	if err != nil {
		return fmt.Errorf("store unreadable: %w", err)
	}
	return sc.Close()
}

// Store returns the raw and projection families.
func (r *Runtime) Store() *store.Store { return r.store }

// Faults returns the fault log.
func (r *Runtime) Faults() *faultlog.Log { return r.faults }

// Metrics returns a snapshot of storage counters.
func (r *Runtime) Metrics() StorageStats { return r.metrics.Snapshot() }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
