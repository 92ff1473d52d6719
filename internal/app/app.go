// Package app wires the extraction engine from a loaded Config. The batch
// CLI and the daemon share it so both see the same sink and cache.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cadri-extractor/internal/cache"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/export"
	"github.com/joseph-ayodele/cadri-extractor/internal/extract"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/cadri-extractor/internal/ocr"
	"github.com/joseph-ayodele/cadri-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cadri-extractor/internal/repository"
)

type App struct {
	Config    *common.Config
	DB        *repository.DB
	Items     repository.ItemRepository
	Documents repository.DocumentRepository
	Gate      *cache.Gate
	Redis     *cache.RedisStore // nil unless REDIS_URL is set
	Limiter   *llm.RateLimiter // nil unless the LLM is enabled
	Text      extract.TextExtractor
	Writer    *core.BatchWriter
	Processor *core.Processor
	Export    *export.Service

	logger *slog.Logger
}

// Build opens the sink, migrates it, loads the processed set and assembles
// the processor. The caller owns the returned App and must Close it.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, logger: logger}

	if err := repository.Migrate(ctx, db.Driver); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.Items = repository.NewItemRepository(db.Driver, repository.KeyMode(cfg.Database.KeyMode), logger)
	a.Documents = repository.NewDocumentRepository(db.Driver, logger)

	sources := cache.Sources{a.Documents}
	gateOpts := []cache.Option{cache.WithLogger(logger)}
	if cfg.Cache.RedisURL != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.RedisURL, cfg.Cache.RedisKey, logger)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Redis = rs
		sources = append(sources, rs)
		gateOpts = append(gateOpts, cache.WithRecorder(rs))
	}
	a.Gate = cache.NewGate(gateOpts...)
	if err := a.Gate.Load(ctx, sources); err != nil && len(sources) > 1 {
		logger.Warn("app.cache.shared_unavailable", "error", err)
		err = a.Gate.Load(ctx, a.Documents)
		if err != nil {
			// An unreadable processed set only costs reprocessing.
			logger.Warn("app.cache.unavailable", "error", err)
		}
	} else if err != nil {
		logger.Warn("app.cache.unavailable", "error", err)
	}

	a.Text = extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Backend:   cfg.Text.Backend,
		Pdftotext: cfg.Text.Pdftotext,
	}, logger), logger)

	orchOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.LLM.Enabled {
		a.Limiter = provider.NewLimiter(cfg.LLM)
		completer, err := provider.NewCompleter(ctx, cfg.LLM, a.Limiter, logger)
		if err != nil {
			a.Close(ctx)
			return nil, common.NewAppError(common.CodeConfig, "llm provider", err)
		}
		orchOpts = append(orchOpts,
			pipeline.WithLLM(llm.NewExtractor(completer,
				llm.WithMaxTextLength(cfg.LLM.MaxTextLength),
				llm.WithLogger(logger),
			)),
			pipeline.WithLLMFirst(cfg.LLM.First),
		)
	}
	orch := pipeline.New(orchOpts...)

	a.Writer = core.NewBatchWriter(a.Items, a.Documents, cfg.Extraction.BatchSize, logger)
	a.Processor = core.NewProcessor(logger, a.Text, orch, a.Gate, a.Writer)
	a.Export = export.NewService(a.Items, logger)

	logger.Info("app.ready",
		"db_driver", cfg.Database.Driver,
		"key_mode", cfg.Database.KeyMode,
		"text_backend", cfg.Text.Backend,
		"llm_enabled", cfg.LLM.Enabled,
		"llm_first", cfg.LLM.First,
		"strategies", orch.Strategies(),
		"cached_documents", a.Gate.Len(),
	)
	return a, nil
}

// Close flushes pending rows and releases the sink and cache connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Writer != nil {
		if err := a.Writer.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("app.close.failed", "error", err)
		return err
	}
	return nil
}
