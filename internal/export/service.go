package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/repository"
)

// Service is a tiny façade over the item repository that renders exports.
type Service struct {
	items  repository.ItemRepository
	logger *slog.Logger
}

func NewService(items repository.ItemRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{items: items, logger: logger}
}

// Rows loads the stored rows of the given documents, or of every document
// in the sink when documentIDs is empty.
func (s *Service) Rows(ctx context.Context, documentIDs []string) ([]entity.ItemRow, error) {
	if len(documentIDs) == 0 {
		ids, err := s.items.ListDocumentIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		documentIDs = ids
	}
	var rows []entity.ItemRow
	for _, id := range documentIDs {
		r, err := s.items.ListItems(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list items of %s: %w", id, err)
		}
		rows = append(rows, r...)
	}
	return rows, nil
}

// ExportXLSX returns an XLSX workbook (as bytes) with one row per item.
func (s *Service) ExportXLSX(ctx context.Context, documentIDs []string) ([]byte, error) {
	start := time.Now()
	rows, err := s.Rows(ctx, documentIDs)
	if err != nil {
		return nil, err
	}
	b, err := WriteXLSX(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return b, nil
}

// ExportCSV returns the same table as ExportXLSX in CSV form.
func (s *Service) ExportCSV(ctx context.Context, documentIDs []string) ([]byte, error) {
	start := time.Now()
	rows, err := s.Rows(ctx, documentIDs)
	if err != nil {
		return nil, err
	}
	b, err := WriteCSV(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.csv.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return b, nil
}

// Header is the column order shared by every export format.
func Header() []string {
	h := []string{"numero_documento"}
	h = append(h, entity.FlatColumns...)
	return append(h, "extraction_method", "processed_at")
}

func record(r entity.ItemRow) []string {
	out := make([]string, 0, len(entity.FlatColumns)+3)
	out = append(out, r.DocumentID)
	for _, c := range entity.FlatColumns {
		if v := r.Columns[c]; v != nil {
			out = append(out, *v)
		} else {
			out = append(out, "")
		}
	}
	processed := ""
	if !r.ProcessedAt.IsZero() {
		processed = r.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return append(out, string(r.Method), processed)
}
