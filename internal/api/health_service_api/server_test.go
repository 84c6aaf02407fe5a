package health_service_api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func status(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_CheckAllHealthy(t *testing.T) {
	s := NewServer(map[string]Probe{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return nil },
	})

	assert.Equal(t, healthpb.HealthCheckResponse_UNKNOWN, status(t, s, "postgres"))

	failing := s.Check(context.Background())

	assert.Empty(t, failing)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, "redis"))
}

func TestServer_CheckReportsFailingDependency(t *testing.T) {
	s := NewServer(map[string]Probe{
		"postgres": func(context.Context) error { return nil },
		"kafka":    func(context.Context) error { return errors.New("connection refused") },
	})

	failing := s.Check(context.Background())

	assert.Equal(t, []string{"kafka"}, failing)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, s, "kafka"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, s, "postgres"))
}

func TestServer_RunStopsWithContext(t *testing.T) {
	s := NewServer(map[string]Probe{"postgres": func(context.Context) error { return nil }})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Run(ctx, time.Millisecond)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, s, "postgres"))
}
