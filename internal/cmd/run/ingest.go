package run

import (
	"context"
	"sync"
	"time"

	cfgpkg "github.com/rhurkes/rofka/internal/config"
	"github.com/rhurkes/rofka/internal/ingest"
	"github.com/rhurkes/rofka/internal/runtime"
	grpcserver "github.com/rhurkes/rofka/internal/server/grpc"
	httpserver "github.com/rhurkes/rofka/internal/server/http"
	logpkg "github.com/rhurkes/rofka/pkg/log"
)

const faultTrimInterval = time.Minute

func runIngest(ctx context.Context, rt *runtime.Runtime, cfg cfgpkg.Config, logger logpkg.Logger, src ingest.Source) error {
	if src == nil {
		ks, err := ingest.NewKafkaSource(ingest.KafkaOptions{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
			GroupID: cfg.GroupID,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		src = ks
	}
	defer src.Close()

	consumer := ingest.New(ingest.Options{
		Source:        src,
		Writer:        rt.Store(),
		Faults:        rt.Faults(),
		Logger:        logger,
		PollTimeout:   cfg.PollTimeout.Std(),
		WriteAttempts: cfg.WriteRetries,
		RetryBackoff:  cfg.RetryBackoff.Std(),
	})

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var gsrv *grpcserver.Server
	var hsrv *httpserver.Server
	if cfg.GRPCAddr != "" {
		gsrv = grpcserver.New(rt, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gsrv.ListenAndServe(sctx, cfg.GRPCAddr); err != nil && sctx.Err() == nil {
				logger.Error("grpc server failed", logpkg.Err(err))
			}
		}()
	}
	if cfg.HTTPAddr != "" {
		hsrv = httpserver.New(rt, logger, httpserver.WithIngestStats(consumer.Stats))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := hsrv.ListenAndServe(sctx, cfg.HTTPAddr); err != nil && sctx.Err() == nil {
				logger.Error("http server failed", logpkg.Err(err))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		trimFaults(sctx, rt, cfg.FaultLogMax, logger)
	}()

	err := consumer.Run(sctx)

	// stop the admin servers before the runtime closes the store
	cancel()
	if gsrv != nil {
		gsrv.Close()
	}
	if hsrv != nil {
		hsrv.Close()
	}
	wg.Wait()
	return err
}

// trimFaults keeps the fault log bounded until ctx is done.
func trimFaults(ctx context.Context, rt *runtime.Runtime, keep int, logger logpkg.Logger) {
	if keep <= 0 {
		return
	}
	tick := time.NewTicker(faultTrimInterval)
	defer tick.Stop()
	for {
		if n, err := rt.Faults().TrimToMax(ctx, keep); err != nil && ctx.Err() == nil {
			logger.Warn("fault log trim failed", logpkg.Err(err))
		} else if n > 0 {
			logger.Debug("fault log trimmed", logpkg.Int("deleted", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}
