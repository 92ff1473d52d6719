package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/app"
	"github.com/joseph-ayodele/cadri-extractor/internal/async"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of CADRI certificates (.pdf, .txt)")
		file     = flag.String("document", "", "single certificate to process instead of -dir")
		out      = flag.String("out", "", "export path, .xlsx or .csv (defaults to cadri_residuos.xlsx next to -dir)")
		noExport = flag.Bool("no-export", false, "skip the export step")
		force    = flag.Bool("force", false, "reprocess documents already in the sink")
		useLLM   = flag.Bool("llm", false, "enable the LLM strategy (overrides LLM_ENABLED)")
		llmFirst = flag.Bool("llm-first", false, "try the LLM before the pattern strategies")
		hidden   = flag.Bool("hidden", false, "include hidden files and directories")
	)
	flag.Parse()

	if (*dir == "") == (*file == "") {
		printError("Error: exactly one of --dir or --document is required\n")
		os.Exit(1)
	}
	if *out == "" {
		base := *dir
		if base == "" {
			base = filepath.Dir(*file)
		}
		*out = filepath.Join(filepath.Dir(filepath.Clean(base)), "cadri_residuos.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if *useLLM {
		cfg.LLM.Enabled = true
	}
	if *llmFirst {
		cfg.LLM.Enabled = true
		cfg.LLM.First = true
	}
	if *force {
		cfg.Extraction.Force = true
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	paths := []string{*file}
	if *dir != "" {
		var stats ingest.DirStats
		paths, stats, err = ingest.ListDirectory(*dir, nil, !*hidden, logger)
		if err != nil {
			logger.Error("failed to scan directory", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("scan complete",
			"dir", *dir,
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"hidden", stats.Hidden,
			"failed", stats.Failed)
	}

	start := time.Now()
	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Extraction.Workers),
		async.WithQueueSize(cfg.Extraction.QueueSize),
		async.WithProcessTimeout(cfg.Extraction.ProcessTimeout),
	)
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := queue.Enqueue(ctx, async.Job{Path: p, Force: cfg.Extraction.Force}); err != nil {
			logger.Warn("enqueue stopped", "path", p, "error", err)
			break
		}
		ids = append(ids, core.DocumentIDFromPath(p))
	}
	queue.Shutdown(context.Background())

	if err := a.Writer.Flush(context.Background()); err != nil {
		printError("Error: writing results: %v\n", err)
		os.Exit(1)
	}
	docs, rows := a.Writer.Written()

	if !*noExport && len(ids) > 0 {
		if err := export(ctx, a, ids, *out); err != nil {
			printError("Error: export: %v\n", err)
			os.Exit(1)
		}
	}

	s := a.Processor.Stats().Snapshot()
	logger.Info("batch processing complete",
		"files", len(ids),
		"stats", s,
		"documents_written", docs,
		"rows_written", rows,
		"elapsed_ms", time.Since(start).Milliseconds())

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files queued: %d\n", len(ids))
	fmt.Printf("- Processed: %d\n", s.Processed)
	fmt.Printf("- Items extracted: %d\n", s.ItemsExtracted)
	fmt.Printf("- No items: %d\n", s.NoItems)
	fmt.Printf("- Errors: %d\n", s.Errors)
	fmt.Printf("- Cache hits: %d\n", s.CacheHits)
	fmt.Printf("- Structured: %d\n", s.Structured)
	fmt.Printf("- Flexible: %d\n", s.Flexible)
	fmt.Printf("- LLM: %d\n", s.LLM)
	fmt.Printf("- LLM errors: %d\n", s.LLMErrors)
	fmt.Printf("- LLM parse errors: %d\n", s.LLMParseErrors)
	fmt.Printf("- Fallback used: %d\n", s.FallbackUsed)
	fmt.Printf("- Dropped items: %d\n", s.DroppedItems)
	fmt.Printf("- Rows written: %d (%d documents)\n", rows, docs)
	if !*noExport {
		fmt.Printf("- Output: %s\n", *out)
	}
}

func export(ctx context.Context, a *app.App, ids []string, out string) error {
	var (
		b   []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(out), ".csv") {
		b, err = a.Export.ExportCSV(ctx, ids)
	} else {
		b, err = a.Export.ExportXLSX(ctx, ids)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0o644)
}
