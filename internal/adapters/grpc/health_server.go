package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
)

// SimulationService is the health service name reported for the tick loop
const SimulationService = "citysim.Simulation"

// HealthServer exposes the standard gRPC health service for the daemon.
//
// The overall status is SERVING as soon as the server listens. The
// simulation service starts NOT_SERVING and flips to SERVING once the first
// tick report arrives, so probes can tell a stuck loop from a live one.
// HealthServer is a simulation.ReportSink.
type HealthServer struct {
	listener        net.Listener
	server          *grpc.Server
	health          *health.Server
	shutdownTimeout time.Duration
}

// NewHealthServer listens on address ("host:port"; port 0 picks a free one)
func NewHealthServer(address string, shutdownTimeout time.Duration) (*HealthServer, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(SimulationService, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &HealthServer{
		listener:        listener,
		server:          server,
		health:          hs,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Addr returns the address the server listens on
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until ctx is cancelled or the server fails
func (s *HealthServer) Serve(ctx context.Context) error {
	logger := logging.LoggerFromContext(ctx)
	logger.Log(logging.LevelInfo, "health server listening", map[string]interface{}{
		"address": s.Addr(),
	})

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.health.Shutdown()
		s.stop()
		return nil
	}
}

// stop drains in-flight calls, forcing the stop after the shutdown timeout
func (s *HealthServer) stop() {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		s.server.Stop()
	}
}

// SetSimulationServing reports whether the tick loop is healthy
func (s *HealthServer) SetSimulationServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(SimulationService, status)
}

// Publish marks the simulation as serving
func (s *HealthServer) Publish(_ context.Context, _ *simulation.TickReport) error {
	s.SetSimulationServing(true)
	return nil
}
