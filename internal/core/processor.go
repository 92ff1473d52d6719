package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/cache"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/extract"
	"github.com/joseph-ayodele/cadri-extractor/internal/pipeline"
)

// FileResult is the outcome of one ProcessFile or ProcessDocument call.
type FileResult struct {
	DocumentID string
	Status     constants.DocumentStatus
	Result     *entity.ExtractionResult // nil when skipped or failed
}

// Processor coordinates text extraction, the cache gate, the orchestrator
// and the sink for one document at a time. Safe for concurrent use.
type Processor struct {
	logger *slog.Logger
	text   extract.TextExtractor
	orch   *pipeline.Orchestrator
	gate   *cache.Gate
	writer *BatchWriter
}

// NewProcessor wires the collaborators. gate and writer may be nil.
func NewProcessor(
	logger *slog.Logger,
	text extract.TextExtractor,
	orch *pipeline.Orchestrator,
	gate *cache.Gate,
	writer *BatchWriter,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if gate == nil {
		gate = cache.NewGate(cache.WithLogger(logger))
	}
	return &Processor{logger: logger, text: text, orch: orch, gate: gate, writer: writer}
}

// DocumentIDFromPath uses the file name without extension as the document id.
func DocumentIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stats exposes the session counters.
func (p *Processor) Stats() *pipeline.Stats { return p.orch.Stats() }

// Gate exposes the cache gate.
func (p *Processor) Gate() *cache.Gate { return p.gate }

// ProcessFile extracts one input file. Unless force is set, documents already
// in the gate are skipped before any text extraction happens. Only a text
// extraction failure is returned as an error.
func (p *Processor) ProcessFile(ctx context.Context, path string, force bool) (*FileResult, error) {
	id := DocumentIDFromPath(path)
	if !force && p.gate.Seen(id) {
		p.orch.Stats().AddCacheHit()
		p.logger.Info("processor.cache.hit", "document_id", id)
		return &FileResult{DocumentID: id, Status: constants.DocumentStatusSkipped}, nil
	}

	res, err := p.text.Extract(ctx, path)
	if err != nil {
		p.orch.Stats().AddError()
		p.logger.Error("processor.text.failed", "document_id", id, "path", path, "error", err)
		wrapped := common.TextExtractionError(fmt.Sprintf("extract text from %s", path), err)
		if p.writer != nil {
			if werr := p.writer.AddFailure(ctx, id, wrapped); werr != nil {
				p.logger.Error("processor.sink.failed", "document_id", id, "error", werr)
			}
		}
		return &FileResult{DocumentID: id, Status: constants.DocumentStatusFailed}, wrapped
	}
	p.logger.Debug("processor.text.ok", "document_id", id, "method", res.Method, "pages", len(res.Pages))

	return p.ProcessDocument(ctx, entity.NewSourceDocument(id, res.Pages))
}

// ProcessDocument runs the orchestrator over text already in memory, hands
// the result to the sink and marks the document in the gate.
func (p *Processor) ProcessDocument(ctx context.Context, doc *entity.SourceDocument) (*FileResult, error) {
	ctx = common.WithDocumentID(ctx, doc.ID)
	result := p.orch.Extract(ctx, doc)

	if p.writer != nil {
		if err := p.writer.Add(ctx, result); err != nil {
			// rows stay buffered and are retried on the next flush
			p.logger.Error("processor.sink.failed", "document_id", doc.ID, "error", err)
		}
	}
	if err := p.gate.Mark(ctx, doc.ID); err != nil {
		p.logger.Warn("processor.cache.mark_failed", "document_id", doc.ID, "error", err)
	}

	status := result.Status()
	p.logger.Info("processor.document.done",
		"document_id", doc.ID,
		"status", status,
		"method", result.Method,
		"items", result.TotalItems,
	)
	return &FileResult{DocumentID: doc.ID, Status: status, Result: result}, nil
}
