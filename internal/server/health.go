package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/cadri-extractor/internal/common"
)

// ServiceName is the health-checked service name of the daemon.
const ServiceName = "cadri.v1.Extractor"

// Pinger is satisfied by *repository.DB.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Health reports SERVING while the sink answers pings.
type Health struct {
	hs      *health.Server
	db      Pinger
	timeout time.Duration
	logger  *slog.Logger
}

func NewHealth(db Pinger, timeout time.Duration, logger *slog.Logger) *Health {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Health{hs: health.NewServer(), db: db, timeout: timeout, logger: logger}
}

// Server returns the gRPC health implementation.
func (h *Health) Server() *health.Server { return h.hs }

// Probe pings the sink. Failures come back as gRPC Internal errors.
func (h *Health) Probe(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	if err := h.db.HealthCheck(ctx, h.timeout); err != nil {
		return common.InternalErrorf("database: %v", err)
	}
	return nil
}

// Update probes once and publishes the result for "" and ServiceName.
func (h *Health) Update(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.Probe(ctx); err != nil {
		h.logger.Warn("health.probe.failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.hs.SetServingStatus("", st)
	h.hs.SetServingStatus(ServiceName, st)
	return st
}

// Run probes every interval until ctx is done, then marks everything NOT_SERVING.
func (h *Health) Run(ctx context.Context, interval time.Duration) {
	h.Update(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.hs.Shutdown()
			return
		case <-t.C:
			h.Update(ctx)
		}
	}
}

// NewGRPCServer registers health and reflection (for grpcurl).
func NewGRPCServer(h *Health, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.Server())
	reflection.Register(s)
	return s
}
