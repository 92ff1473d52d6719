package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/constants"
)

// Backends for PDF text extraction.
const (
	BackendPdftotext = "pdftotext"
	BackendMuPDF     = "mupdf"
)

// Methods recorded on a Result.
const (
	MethodPdftotext = "pdftotext"
	MethodMuPDF     = "mupdf"
	MethodPlainText = "plain-text"
)

type Config struct {
	Backend   string // mupdf | pdftotext; default mupdf
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

// Result is the text of one file, one entry per page. Pages keep their
// position even when empty so page numbers stay aligned with the PDF.
type Result struct {
	Pages      []string
	SourceType string // constants.PDF | constants.TXT
	Method     string
	Duration   time.Duration
	Warnings   []string
}

// Text joins the pages with form feeds, the way pdftotext prints them.
func (r Result) Text() string { return strings.Join(r.Pages, "\f") }

type Extractor struct {
	cfg    Config
	runner Runner
	mupdf  func(path string) ([]string, error)
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner, mostly for tests.
func WithRunner(r Runner) Option { return func(e *Extractor) { e.runner = r } }

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendMuPDF
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, mupdf: mupdfPages, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("text.extract.start", "path", path, "backend", e.cfg.Backend, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("unsupported text extension", "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	for i := range res.Pages {
		res.Pages[i] = Normalize(res.Pages[i])
	}
	if e.cfg.MaxPages > 0 && len(res.Pages) > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d of %d pages", e.cfg.MaxPages, len(res.Pages)))
		res.Pages = res.Pages[:e.cfg.MaxPages]
	}
	e.logger.Debug("text.extract.ok", "path", path, "method", res.Method, "pages", len(res.Pages), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	res := Result{SourceType: constants.PDF}
	switch e.cfg.Backend {
	case BackendPdftotext:
		res.Method = MethodPdftotext
		pages, warns, err := e.pdfToText(ctx, path)
		res.Warnings = warns
		if err != nil {
			return res, err
		}
		res.Pages = pages
	default:
		res.Method = MethodMuPDF
		pages, err := e.mupdf(path)
		if err != nil {
			return res, err
		}
		res.Pages = pages
	}
	return res, nil
}

// splitPages splits form-feed separated text. The trailing form feed
// pdftotext emits after the last page does not start a new page.
func splitPages(text string) []string {
	text = strings.TrimSuffix(text, "\f")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\f")
}
