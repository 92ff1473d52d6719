package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/ocr"
)

func main() {
	var (
		backend  = flag.String("backend", "", "pdftotext | mupdf (defaults to TEXT_BACKEND)")
		maxPages = flag.Int("max-pages", 0, "stop after this many pages (0 = all)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "pdftext [-backend mupdf] <certificate.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	if *backend != "" {
		cfg.Text.Backend = *backend
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	x := ocr.NewExtractor(ocr.Config{
		Backend:   cfg.Text.Backend,
		Pdftotext: cfg.Text.Pdftotext,
		MaxPages:  *maxPages,
	}, logger)

	start := time.Now()
	res, err := x.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	doc := entity.NewSourceDocument(core.DocumentIDFromPath(path), res.Pages)
	fmt.Println(doc.Text())

	logger.Info("text extraction OK",
		"document_id", doc.ID,
		"method", res.Method,
		"pages", len(res.Pages),
		"bytes", len(doc.Text()),
		"warnings", res.Warnings,
		"duration_ms", res.Duration.Milliseconds(),
	)
}
