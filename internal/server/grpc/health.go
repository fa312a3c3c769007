package grpcserver

import (
	"context"
	"time"

	logpkg "github.com/rhurkes/rofka/pkg/log"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the named service reported next to the overall status.
const ServiceName = "rofka"

const healthInterval = 5 * time.Second

// refresh maps the store health onto the serving status.
func (s *Server) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.rt.CheckHealth(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.Warn("store unhealthy", logpkg.Err(err))
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
