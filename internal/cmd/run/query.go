package run

import (
	"context"
	"fmt"
	"io"
	"strings"

	cfgpkg "github.com/rhurkes/rofka/internal/config"
	"github.com/rhurkes/rofka/internal/query"
	"github.com/rhurkes/rofka/internal/record"
	"github.com/rhurkes/rofka/internal/runtime"
	"github.com/rhurkes/rofka/internal/store"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

// Predicate builds the query predicate from Statuses and Filter. Both are
// applied when both are set; with neither, entries still UNPUBLISHED are
// reported.
func Predicate(cfg cfgpkg.Config) (query.Predicate, error) {
	var preds []query.Predicate
	if len(cfg.Statuses) > 0 {
		statuses := make([]record.Status, 0, len(cfg.Statuses))
		for _, name := range cfg.Statuses {
			s, err := record.ParseStatus(strings.TrimSpace(name))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", cfgpkg.ErrInvalid, err)
			}
			statuses = append(statuses, s)
		}
		preds = append(preds, query.StatusIn(statuses...))
	}
	if strings.TrimSpace(cfg.Filter) != "" {
		cel, err := query.CEL(cfg.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cfgpkg.ErrInvalid, err)
		}
		preds = append(preds, cel)
	}
	switch len(preds) {
	case 0:
		return query.Default(), nil
	case 1:
		return preds[0], nil
	default:
		return query.All(preds...), nil
	}
}

func runQuery(ctx context.Context, rt *runtime.Runtime, cfg cfgpkg.Config, logger logpkg.Logger, out io.Writer) error {
	pred, err := Predicate(cfg)
	if err != nil {
		return err
	}
	format, err := query.ParseFormat(cfg.Output)
	if err != nil {
		return fmt.Errorf("%w: %v", cfgpkg.ErrInvalid, err)
	}
	res, err := query.NewScanner(rt.Store(), pred, logger).Scan(ctx, query.Emitter(out, format))
	if err != nil {
		return err
	}
	logger.Info("query finished",
		logpkg.Int("scanned", res.Scanned),
		logpkg.Int("matched", res.Matched),
		logpkg.Int("errors", len(res.Errors)),
	)
	return nil
}

func reconcile(ctx context.Context, rt *runtime.Runtime, logger logpkg.Logger, out io.Writer) (store.ReconcileReport, error) {
	rep, err := rt.Store().Reconcile(ctx)
	if err != nil {
		return rep, fmt.Errorf("reconcile: %w", err)
	}
	logger.Info("reconcile finished",
		logpkg.Int("scanned", rep.Scanned),
		logpkg.Int("created", rep.Created),
		logpkg.Int("updated", rep.Updated),
		logpkg.Int("removed", rep.Removed),
		logpkg.Int("orphans", rep.Orphans),
		logpkg.Int("undecodable", rep.Undecodable),
	)
	if out != nil {
		_, err = fmt.Fprintf(out, "scanned=%d created=%d updated=%d removed=%d orphans=%d undecodable=%d\n",
			rep.Scanned, rep.Created, rep.Updated, rep.Removed, rep.Orphans, rep.Undecodable)
	}
	return rep, err
}
