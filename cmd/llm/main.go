package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/extract"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/cadri-extractor/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llm <certificate.pdf|.txt> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	cfg := common.LoadConfig()
	cfg.LLM.Enabled = true
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	text := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Backend:   cfg.Text.Backend,
		Pdftotext: cfg.Text.Pdftotext,
	}, logger), logger)
	res, err := text.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}
	doc := entity.NewSourceDocument(core.DocumentIDFromPath(path), res.Pages)

	completer, err := provider.NewCompleter(ctx, cfg.LLM, nil, logger)
	if err != nil {
		logger.Error("llm provider", "error", err)
		os.Exit(1)
	}
	extractor := llm.NewExtractor(completer,
		llm.WithMaxTextLength(cfg.LLM.MaxTextLength),
		llm.WithLogger(logger),
	)

	// Repeated runs on the same document show how stable the model output is.
	failures := 0
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := common.WithTimeout(ctx, cfg.LLM.Timeout)
		runCtx = common.WithDocumentID(runCtx, doc.ID)
		start := time.Now()
		resp, err := extractor.Extract(runCtx, doc)
		cancelRun()

		if err != nil {
			failures++
			logger.Error("llm.run.error", "iter", i, "code", common.ErrorCode(err), "error", err)
			continue
		}
		logger.Info("llm.run.ok", "iter", i, "items", resp.TotalItems, "elapsed_ms", time.Since(start).Milliseconds())
		fmt.Println(string(resp.Raw))

		if i < times {
			time.Sleep(750 * time.Millisecond)
		}
	}

	logger.Info("done", "document_id", doc.ID, "times", times, "failures", failures)
	if failures == times {
		os.Exit(1)
	}
}
