package health_service_api

import (
	"context"
	"log"
	"sort"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

// Server publishes dependency health over the standard gRPC health protocol.
// Each probe is exposed as its own service name; the empty name is SERVING
// only while every probe passes.
type Server struct {
	health  *health.Server
	probes  map[string]Probe
	timeout time.Duration
}

func NewServer(probes map[string]Probe) *Server {
	s := &Server{
		health:  health.NewServer(),
		probes:  probes,
		timeout: 2 * time.Second,
	}
	for name := range probes {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_UNKNOWN)
	}
	return s
}

func (s *Server) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, s.health)
}

// Check runs every probe once and updates the published statuses. It returns
// the names of the failing dependencies.
func (s *Server) Check(ctx context.Context) []string {
	var failing []string
	for name, probe := range s.probes {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := probe(probeCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			failing = append(failing, name)
			log.Printf("health probe failed dependency=%s: %v", name, err)
		}
		s.health.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if len(failing) > 0 {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", overall)
	sort.Strings(failing)
	return failing
}

// Run re-checks on every tick until ctx is done, then marks everything NOT_SERVING.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	s.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}
