package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/rhurkes/rofka/internal/runtime"
	logpkg "github.com/rhurkes/rofka/pkg/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
	log    logpkg.Logger
}

// New constructs a gRPC server and registers the health service.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	s := &Server{
		rt:     rt,
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
		log:    logger.WithComponent("grpc"),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.refresh(context.Background())
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.log.Info("grpc health listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()

	tick := time.NewTicker(healthInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpc.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-tick.C:
			s.refresh(ctx)
		}
	}
}

// Close marks every service NOT_SERVING, stops the server and closes the listener.
func (s *Server) Close() {
	s.health.Shutdown()
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
