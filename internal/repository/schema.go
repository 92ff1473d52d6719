package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

const (
	DocumentsTableName = "cadri_documents"
	ItemsTableName     = "cadri_items"
)

var (
	documentColumns = []*schema.Column{
		{Name: "document_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "method", Type: field.TypeString, Nullable: true},
		{Name: "total_items", Type: field.TypeInt},
		{Name: "last_error", Type: field.TypeString, Nullable: true},
		{Name: "processed_at", Type: field.TypeString},
	}

	// DocumentsTable holds one status row per processed document.
	DocumentsTable = &schema.Table{
		Name:       DocumentsTableName,
		Columns:    documentColumns,
		PrimaryKey: []*schema.Column{documentColumns[0]},
		Indexes: []*schema.Index{
			{Name: "cadri_documents_status", Columns: []*schema.Column{documentColumns[1]}},
		},
	}

	// itemKeyColumns come first in every item row; FlatColumns follow.
	itemKeyColumns = []string{"document_id", "row_key", "item_index", "residue_key", "extraction_method", "processed_at"}

	itemColumns = buildItemColumns()

	// ItemsTable holds one flat row per extracted item. row_key is the
	// item index or the residue code depending on the key mode.
	ItemsTable = &schema.Table{
		Name:       ItemsTableName,
		Columns:    itemColumns,
		PrimaryKey: []*schema.Column{itemColumns[0], itemColumns[1]},
	}

	// Tables is every table owned by the sink.
	Tables = []*schema.Table{DocumentsTable, ItemsTable}
)

func buildItemColumns() []*schema.Column {
	cols := make([]*schema.Column, 0, len(itemKeyColumns)+len(entity.FlatColumns))
	for _, name := range itemKeyColumns {
		cols = append(cols, &schema.Column{Name: name, Type: field.TypeString, Nullable: name == "residue_key"})
	}
	for _, name := range entity.FlatColumns {
		cols = append(cols, &schema.Column{Name: name, Type: field.TypeString, Nullable: true})
	}
	return cols
}

// Migrate creates or upgrades the sink tables.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
