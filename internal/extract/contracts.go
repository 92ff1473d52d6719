package extract

import (
	"context"
	"time"
)

// TextExtractor turns an input file into per-page text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Pages      []string
	SourceType string // "PDF" | "TXT"
	Method     string // "pdftotext" | "mupdf" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}

// TextExtractorFunc adapts a function to TextExtractor.
type TextExtractorFunc func(ctx context.Context, path string) (TextExtractionResult, error)

func (f TextExtractorFunc) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	return f(ctx, path)
}
