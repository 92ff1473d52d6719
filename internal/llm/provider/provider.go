// Package provider builds the configured llm.Completer, rate limited.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm/openai"
)

// Backend names accepted in LLM_PROVIDER.
const (
	BackendOpenRouter = "openrouter"
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
)

// NewLimiter builds the limiter shared by every completion of one process.
func NewLimiter(cfg common.LLMConfig) *llm.RateLimiter {
	return llm.NewRateLimiter(cfg.MaxConcurrent, cfg.MinDelay)
}

// NewCompleter creates the completer for cfg.Provider and wraps it in rl with
// cfg.Timeout per call. A nil rl gets a fresh one from NewLimiter.
func NewCompleter(ctx context.Context, cfg common.LLMConfig, rl *llm.RateLimiter, logger *slog.Logger) (llm.Completer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rl == nil {
		rl = NewLimiter(cfg)
	}

	var c llm.Completer
	switch cfg.Provider {
	case BackendOpenRouter, BackendOpenAI:
		oc := openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}
		if cfg.Provider == BackendOpenRouter {
			oc.SiteURL = cfg.SiteURL
			oc.SiteName = cfg.SiteName
			oc = openai.OpenRouter(oc)
		}
		c = openai.NewClient(oc, logger)
	case BackendGemini:
		gc, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, err
		}
		c = gc
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}

	logger.Info("llm.provider.ready",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"max_concurrent", rl.MaxConcurrent(),
		"min_delay", cfg.MinDelay,
	)
	return llm.RateLimited(c, rl, cfg.Timeout), nil
}
