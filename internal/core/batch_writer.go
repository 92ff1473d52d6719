package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/repository"
)

// DefaultBatchSize is the number of documents buffered between flushes.
const DefaultBatchSize = 10

// BatchWriter buffers extraction results and writes them to the sink every
// size documents. A failed flush keeps the buffer so the next flush retries
// it; upserts make re-flushing safe.
type BatchWriter struct {
	items  repository.ItemRepository
	docs   repository.DocumentRepository
	size   int
	now    func() time.Time
	logger *slog.Logger

	mu          sync.Mutex
	pendingRows []entity.ItemRow
	pendingDocs []entity.DocumentRecord
	writtenDocs int
	writtenRows int
}

func NewBatchWriter(items repository.ItemRepository, docs repository.DocumentRepository, size int, logger *slog.Logger) *BatchWriter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{items: items, docs: docs, size: size, now: time.Now, logger: logger}
}

// Add buffers one result and flushes when the batch is full.
func (w *BatchWriter) Add(ctx context.Context, r *entity.ExtractionResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingRows = append(w.pendingRows, r.Rows()...)
	w.pendingDocs = append(w.pendingDocs, entity.DocumentRecord{
		DocumentID:  r.DocumentID,
		Status:      r.Status(),
		Method:      r.Method,
		TotalItems:  r.TotalItems,
		ProcessedAt: r.ProcessedAt,
	})
	if len(w.pendingDocs) >= w.size {
		return w.flushLocked(ctx)
	}
	return nil
}

// AddFailure buffers a FAILED status row for a document whose text could not be read.
func (w *BatchWriter) AddFailure(ctx context.Context, documentID string, cause error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingDocs = append(w.pendingDocs, entity.DocumentRecord{
		DocumentID:  documentID,
		Status:      constants.DocumentStatusFailed,
		Error:       cause.Error(),
		ProcessedAt: w.now(),
	})
	if len(w.pendingDocs) >= w.size {
		return w.flushLocked(ctx)
	}
	return nil
}

// Flush writes everything buffered.
func (w *BatchWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

// Close flushes the final partial batch.
func (w *BatchWriter) Close(ctx context.Context) error { return w.Flush(ctx) }

// Written returns the documents and item rows written so far.
func (w *BatchWriter) Written() (docs, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writtenDocs, w.writtenRows
}

// Pending returns the number of buffered documents.
func (w *BatchWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingDocs)
}

func (w *BatchWriter) flushLocked(ctx context.Context) error {
	if len(w.pendingDocs) == 0 && len(w.pendingRows) == 0 {
		return nil
	}
	// items first, so a document row never claims items that are not stored
	n, err := w.items.UpsertItems(ctx, w.pendingRows)
	if err != nil {
		w.logger.Error("sink.flush.items_failed", "rows", len(w.pendingRows), "error", err)
		return fmt.Errorf("flush items: %w", err)
	}
	w.pendingRows = nil
	w.writtenRows += n

	if err := w.docs.UpsertDocuments(ctx, w.pendingDocs); err != nil {
		w.logger.Error("sink.flush.documents_failed", "documents", len(w.pendingDocs), "error", err)
		return fmt.Errorf("flush documents: %w", err)
	}
	w.writtenDocs += len(w.pendingDocs)
	w.logger.Info("sink.flush.ok", "documents", len(w.pendingDocs), "rows", n)
	w.pendingDocs = nil
	return nil
}
