package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

// KeyMode selects which item field identifies a row within a document.
type KeyMode string

const (
	KeyByItemIndex   KeyMode = "item_index"
	KeyByResidueCode KeyMode = "residue_code"
)

// upsertChunk keeps a single INSERT well under SQLite's bound-variable limit.
const upsertChunk = 100

type ItemRepository interface {
	UpsertItems(ctx context.Context, rows []entity.ItemRow) (int, error)
	ListItems(ctx context.Context, documentID string) ([]entity.ItemRow, error)
	ListDocumentIDs(ctx context.Context) ([]string, error)
}

type itemRepo struct {
	drv    *entsql.Driver
	mode   KeyMode
	logger *slog.Logger
}

func NewItemRepository(drv *entsql.Driver, mode KeyMode, logger *slog.Logger) ItemRepository {
	if mode == "" {
		mode = KeyByItemIndex
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &itemRepo{drv: drv, mode: mode, logger: logger}
}

func (r *itemRepo) rowKey(row entity.ItemRow) string {
	if r.mode == KeyByResidueCode && row.ResidueKey != "" {
		return row.ResidueKey
	}
	return row.ItemIndex
}

// dedupe collapses rows sharing a key, keeping the last values at the
// position of the first occurrence.
func (r *itemRepo) dedupe(rows []entity.ItemRow) []entity.ItemRow {
	type key struct{ doc, row string }
	pos := make(map[key]int, len(rows))
	out := make([]entity.ItemRow, 0, len(rows))
	for _, row := range rows {
		k := key{row.DocumentID, r.rowKey(row)}
		if i, ok := pos[k]; ok {
			out[i] = row
			continue
		}
		pos[k] = len(out)
		out = append(out, row)
	}
	return out
}

// UpsertItems writes rows in one transaction. Existing rows with the same
// key are overwritten. Returns the number of distinct rows written.
func (r *itemRepo) UpsertItems(ctx context.Context, rows []entity.ItemRow) (int, error) {
	rows = r.dedupe(rows)
	if len(rows) == 0 {
		return 0, nil
	}

	columns := append(append([]string{}, itemKeyColumns...), entity.FlatColumns...)

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(rows); start += upsertChunk {
		end := min(start+upsertChunk, len(rows))
		ins := entsql.Dialect(r.drv.Dialect()).Insert(ItemsTableName).Columns(columns...)
		for _, row := range rows[start:end] {
			ins.Values(r.values(row)...)
		}
		ins.OnConflict(entsql.ConflictColumns("document_id", "row_key"), entsql.ResolveWithNewValues())
		query, args := ins.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			_ = tx.Rollback()
			r.logger.Error("failed to upsert items", "rows", end-start, "error", err)
			return 0, fmt.Errorf("upsert items: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit items: %w", err)
	}
	r.logger.Debug("items upserted", "rows", len(rows), "key_mode", r.mode)
	return len(rows), nil
}

func (r *itemRepo) values(row entity.ItemRow) []any {
	vals := make([]any, 0, len(itemKeyColumns)+len(entity.FlatColumns))
	var residue any
	if row.ResidueKey != "" {
		residue = row.ResidueKey
	}
	vals = append(vals,
		row.DocumentID,
		r.rowKey(row),
		row.ItemIndex,
		residue,
		string(row.Method),
		row.ProcessedAt.UTC().Format(time.RFC3339Nano),
	)
	for _, c := range entity.FlatColumns {
		if v := row.Columns[c]; v != nil {
			vals = append(vals, *v)
		} else {
			vals = append(vals, nil)
		}
	}
	return vals
}

// ListItems returns the stored rows of one document ordered by item index.
func (r *itemRepo) ListItems(ctx context.Context, documentID string) ([]entity.ItemRow, error) {
	columns := append(append([]string{}, itemKeyColumns...), entity.FlatColumns...)
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select(columns...).
		From(entsql.Table(ItemsTableName)).
		Where(entsql.EQ("document_id", documentID)).
		OrderBy("item_index", "row_key").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to list items", "document_id", documentID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []entity.ItemRow
	for rows.Next() {
		var (
			docID, rowKey, itemIndex, method, processedAt string
			residue                                       sql.NullString
		)
		flat := make([]sql.NullString, len(entity.FlatColumns))
		dest := []any{&docID, &rowKey, &itemIndex, &residue, &method, &processedAt}
		for i := range flat {
			dest = append(dest, &flat[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := entity.ItemRow{
			DocumentID: docID,
			ItemIndex:  itemIndex,
			ResidueKey: residue.String,
			Method:     constants.ExtractionMethod(method),
			Columns:    make(map[string]*string, len(flat)),
		}
		if t, err := time.Parse(time.RFC3339Nano, processedAt); err == nil {
			row.ProcessedAt = t
		}
		for i, c := range entity.FlatColumns {
			if flat[i].Valid {
				v := flat[i].String
				row.Columns[c] = &v
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListDocumentIDs returns every document with at least one stored item.
func (r *itemRepo) ListDocumentIDs(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select("document_id").
		Distinct().
		From(entsql.Table(ItemsTableName)).
		OrderBy("document_id").
		Query()
	return queryStrings(ctx, r.drv, query, args)
}

func queryStrings(ctx context.Context, drv dialect.Driver, query string, args []any) ([]string, error) {
	var rows entsql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
