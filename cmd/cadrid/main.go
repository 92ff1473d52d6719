package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/cadri-extractor/internal/api"
	"github.com/joseph-ayodele/cadri-extractor/internal/app"
	"github.com/joseph-ayodele/cadri-extractor/internal/async"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/ingest"
	"github.com/joseph-ayodele/cadri-extractor/internal/server"
)

const (
	healthInterval = 15 * time.Second
	flushInterval  = 30 * time.Second
)

func main() {
	// Setup structured logger that outputs messages with variables but no time
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	if err := a.DB.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Extraction.Workers),
		async.WithQueueSize(cfg.Extraction.QueueSize),
		async.WithProcessTimeout(cfg.Extraction.ProcessTimeout),
	)

	// gRPC health
	hc := server.NewHealth(a.DB, 2*time.Second, logger)
	go hc.Run(ctx, healthInterval)
	grpcServer := server.NewGRPCServer(hc)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
		}
	}()

	// HTTP API
	gin.SetMode(gin.ReleaseMode)
	var limiter api.LimiterUsage
	if a.Limiter != nil {
		limiter = a.Limiter
	}
	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Processor: a.Processor,
			Queue:     queue,
			Documents: a.Documents,
			Items:     a.Items,
			Export:    a.Export,
			Limiter:   limiter,
			Logger:    logger,

			ProcessTimeout: cfg.Extraction.ProcessTimeout,
			AllowOrigins:   cfg.Server.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http api listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	// Watched directories feed the queue.
	if len(cfg.Watch.Dirs) > 0 {
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Watch.Dirs,
			InitialScan: true,
			Debounce:    cfg.Watch.Debounce,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("failed to start watcher", "dirs", cfg.Watch.Dirs, "error", err)
			os.Exit(1)
		}
		go func() {
			for err := range errs {
				logger.Warn("watcher error", "error", err)
			}
		}()
		go func() {
			for p := range paths {
				if err := queue.Enqueue(ctx, async.Job{Path: p, Force: cfg.Extraction.Force}); err != nil {
					logger.Warn("enqueue failed", "path", p, "error", err)
				}
			}
		}()
	}

	// Batches fill slowly in a daemon; flush on a timer so rows land promptly.
	go func() {
		t := time.NewTicker(flushInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := a.Writer.Flush(ctx); err != nil {
					logger.Warn("periodic flush failed", "error", err)
				}
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()

	s := a.Processor.Stats().Snapshot()
	logger.Info("stopped", "stats", s)
}
