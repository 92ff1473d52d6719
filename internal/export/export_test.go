package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
)

func sp(s string) *string { return &s }

var at = time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC)

func sampleRows() []entity.ItemRow {
	return []entity.ItemRow{
		{
			DocumentID: "12345",
			ItemIndex:  "01",
			Columns: map[string]*string{
				"numero_residuo":    sp("D099"),
				"descricao_residuo": sp("Óleo; usado"),
				"geradora_nome":     sp("ACME LTDA"),
			},
			Method:      constants.MethodStructured,
			ProcessedAt: at,
		},
		{DocumentID: "12345", ItemIndex: "02", Columns: map[string]*string{"numero_residuo": sp("F001")}, Method: constants.MethodStructured},
	}
}

func TestWriteCSV(t *testing.T) {
	b, err := WriteCSV(sampleRows())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, utf8BOM))

	r := csv.NewReader(bytes.NewReader(b[len(utf8BOM):]))
	r.Comma = ';'
	recs, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	header := Header()
	assert.Equal(t, header, recs[0])
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	assert.Equal(t, "12345", recs[1][0])
	assert.Equal(t, "D099", recs[1][col("numero_residuo")])
	assert.Equal(t, "Óleo; usado", recs[1][col("descricao_residuo")])
	assert.Equal(t, "ACME LTDA", recs[1][col("geradora_nome")])
	assert.Equal(t, "", recs[1][col("classe_residuo")])
	assert.Equal(t, "structured", recs[1][col("extraction_method")])
	assert.Equal(t, "2025-09-24T12:00:00Z", recs[1][col("processed_at")])
	assert.Equal(t, "", recs[2][col("processed_at")])
}

func TestWriteXLSX(t *testing.T) {
	b, err := WriteXLSX(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "numero_documento", rows[0][0])
	assert.Equal(t, "numero_residuo", rows[0][1])
	assert.Equal(t, "12345", rows[1][0])
	assert.Equal(t, "D099", rows[1][1])
	assert.Equal(t, "Óleo; usado", rows[1][3])
	assert.Equal(t, "F001", rows[2][1])
}

type fakeItems struct {
	byDoc map[string][]entity.ItemRow
	err   error
}

func (f fakeItems) UpsertItems(context.Context, []entity.ItemRow) (int, error) { return 0, nil }
func (f fakeItems) ListItems(_ context.Context, id string) ([]entity.ItemRow, error) {
	return f.byDoc[id], f.err
}
func (f fakeItems) ListDocumentIDs(context.Context) ([]string, error) {
	return []string{"A", "B"}, f.err
}

func TestService_RowsDefaultsToAllDocuments(t *testing.T) {
	items := fakeItems{byDoc: map[string][]entity.ItemRow{
		"A": {{DocumentID: "A", ItemIndex: "01"}},
		"B": {{DocumentID: "B", ItemIndex: "01"}, {DocumentID: "B", ItemIndex: "02"}},
	}}
	s := NewService(items, nil)

	rows, err := s.Rows(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = s.Rows(context.Background(), []string{"B"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	b, err := s.ExportCSV(context.Background(), []string{"A"})
	require.NoError(t, err)
	assert.Contains(t, string(b), "A;")

	_, err = s.ExportXLSX(context.Background(), nil)
	require.NoError(t, err)
}

func TestService_PropagatesErrors(t *testing.T) {
	s := NewService(fakeItems{err: errors.New("db down")}, nil)
	_, err := s.ExportXLSX(context.Background(), nil)
	assert.ErrorContains(t, err, "db down")
}
