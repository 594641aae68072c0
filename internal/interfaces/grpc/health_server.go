package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/turtacn/gridrisk/pkg/logger"
)

// ScoringServiceName is the health service name reported for the scoring engine.
const ScoringServiceName = "gridrisk.scoring"

// ReadinessFunc reports dependency status; the bool is overall readiness.
type ReadinessFunc func(ctx context.Context) (map[string]string, bool)

// Server serves the standard gRPC health protocol for orchestrators and
// load balancers that probe over gRPC.
type Server struct {
	server   *grpc.Server
	health   *health.Server
	ready    ReadinessFunc
	interval time.Duration
	log      logger.Logger
}

// NewServer creates the gRPC server. ready may be nil, in which case the
// service always reports SERVING.
func NewServer(ready ReadinessFunc, interval time.Duration, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	chain := NewInterceptorChain(log)
	s := &Server{
		server:   grpc.NewServer(chain.ChainUnaryInterceptors()),
		health:   health.NewServer(),
		ready:    ready,
		interval: interval,
		log:      log.WithComponent("grpc_health"),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info(context.Background(), "Starting gRPC server", logger.Fields{"address": lis.Addr().String()})
	return s.server.Serve(lis)
}

// WatchReadiness refreshes the serving status until ctx ends.
func (s *Server) WatchReadiness(ctx context.Context) {
	if s.ready == nil {
		return
	}
	s.refresh(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Server) refresh(ctx context.Context) {
	checks, ok := s.ready(ctx)
	if ok {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
		return
	}
	s.log.Warn(ctx, "gRPC health reporting NOT_SERVING", logger.Fields{"checks": checks})
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ScoringServiceName, st)
}

// Stop drains in-flight calls, forcing a stop when ctx ends first.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}
