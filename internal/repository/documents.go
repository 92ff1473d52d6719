package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

var documentColumnNames = []string{"document_id", "status", "method", "total_items", "last_error", "processed_at"}

// DocumentRepository stores the per-document status rows. It doubles as the
// cache gate's source of already processed documents.
type DocumentRepository interface {
	UpsertDocuments(ctx context.Context, docs []entity.DocumentRecord) error
	ListCompleted(ctx context.Context) ([]string, error)
	Get(ctx context.Context, documentID string) (*entity.DocumentRecord, error)
	CountByStatus(ctx context.Context) (map[constants.DocumentStatus]int, error)
}

type documentRepo struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewDocumentRepository(drv *entsql.Driver, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{drv: drv, logger: logger}
}

func (r *documentRepo) UpsertDocuments(ctx context.Context, docs []entity.DocumentRecord) error {
	if len(docs) == 0 {
		return nil
	}
	// last record per document wins
	pos := make(map[string]int, len(docs))
	uniq := make([]entity.DocumentRecord, 0, len(docs))
	for _, d := range docs {
		if i, ok := pos[d.DocumentID]; ok {
			uniq[i] = d
			continue
		}
		pos[d.DocumentID] = len(uniq)
		uniq = append(uniq, d)
	}

	ins := entsql.Dialect(r.drv.Dialect()).Insert(DocumentsTableName).Columns(documentColumnNames...)
	for _, d := range uniq {
		ins.Values(
			d.DocumentID,
			string(d.Status),
			nullable(string(d.Method)),
			d.TotalItems,
			nullable(d.Error),
			d.ProcessedAt.UTC().Format(time.RFC3339Nano),
		)
	}
	ins.OnConflict(entsql.ConflictColumns("document_id"), entsql.ResolveWithNewValues())
	query, args := ins.Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to upsert documents", "documents", len(uniq), "error", err)
		return fmt.Errorf("upsert documents: %w", err)
	}
	return nil
}

// ListCompleted returns documents whose last run finished with or without items.
func (r *documentRepo) ListCompleted(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select("document_id").
		From(entsql.Table(DocumentsTableName)).
		Where(entsql.In("status", string(constants.DocumentStatusDone), string(constants.DocumentStatusNoItems))).
		OrderBy("document_id").
		Query()
	ids, err := queryStrings(ctx, r.drv, query, args)
	if err != nil {
		r.logger.Error("failed to list completed documents", "error", err)
		return nil, err
	}
	return ids, nil
}

func (r *documentRepo) Get(ctx context.Context, documentID string) (*entity.DocumentRecord, error) {
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select(documentColumnNames...).
		From(entsql.Table(DocumentsTableName)).
		Where(entsql.EQ("document_id", documentID)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, common.NewAppError("NOT_FOUND", "document "+documentID, common.ErrNotFound)
	}
	var (
		rec          entity.DocumentRecord
		status       string
		method, errS sql.NullString
		processedAt  string
	)
	if err := rows.Scan(&rec.DocumentID, &status, &method, &rec.TotalItems, &errS, &processedAt); err != nil {
		return nil, err
	}
	rec.Status = constants.DocumentStatus(status)
	rec.Method = constants.ExtractionMethod(method.String)
	rec.Error = errS.String
	if t, err := time.Parse(time.RFC3339Nano, processedAt); err == nil {
		rec.ProcessedAt = t
	}
	return &rec, nil
}

func (r *documentRepo) CountByStatus(ctx context.Context) (map[constants.DocumentStatus]int, error) {
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select("status", entsql.Count("*")).
		From(entsql.Table(DocumentsTableName)).
		GroupBy("status").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[constants.DocumentStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[constants.DocumentStatus(status)] = n
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
