package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/repository"
)

func result(id string, n int) *entity.ExtractionResult {
	r := &entity.ExtractionResult{DocumentID: id, Method: constants.MethodStructured, ProcessedAt: fixedNow}
	for i := 0; i < n; i++ {
		code := "D099"
		r.Items = append(r.Items, entity.WasteItem{ItemIndex: string(rune('1' + i)), ResidueCode: &code})
	}
	r.TotalItems = len(r.Items)
	return r
}

func TestBatchWriter_FlushesEveryBatch(t *testing.T) {
	ctx := context.Background()
	items, docs := &memItems{}, &memDocs{}
	w := NewBatchWriter(items, docs, 3, quiet())

	require.NoError(t, w.Add(ctx, result("a", 2)))
	require.NoError(t, w.Add(ctx, result("b", 0)))
	assert.Empty(t, docs.docs)
	assert.Equal(t, 2, w.Pending())

	require.NoError(t, w.Add(ctx, result("c", 1)))
	assert.Len(t, docs.docs, 3)
	assert.Len(t, items.rows, 3)
	assert.Zero(t, w.Pending())

	require.NoError(t, w.Add(ctx, result("d", 1)))
	require.NoError(t, w.Close(ctx))
	assert.Len(t, docs.docs, 4)

	nDocs, nRows := w.Written()
	assert.Equal(t, 4, nDocs)
	assert.Equal(t, 4, nRows)

	assert.Equal(t, constants.DocumentStatusNoItems, docs.docs[1].Status)
	assert.Equal(t, constants.DocumentStatusDone, docs.docs[2].Status)
}

func TestBatchWriter_FailedFlushIsRetried(t *testing.T) {
	ctx := context.Background()
	items, docs := &memItems{err: errors.New("disk full")}, &memDocs{}
	w := NewBatchWriter(items, docs, 1, quiet())

	err := w.Add(ctx, result("a", 1))
	require.Error(t, err)
	assert.Equal(t, 1, w.Pending())
	assert.Empty(t, docs.docs)

	items.err = nil
	require.NoError(t, w.Flush(ctx))
	assert.Len(t, items.rows, 1)
	assert.Len(t, docs.docs, 1)
	assert.Zero(t, w.Pending())
}

func TestBatchWriter_EmptyFlushIsNoop(t *testing.T) {
	items, docs := &memItems{err: errors.New("should not be called")}, &memDocs{}
	w := NewBatchWriter(items, docs, 0, quiet())
	assert.NoError(t, w.Close(context.Background()))
}

func TestBatchWriter_ReflushIsIdempotentInSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, common.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         "file:batchwriter?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		DialTimeout: time.Second,
	}, quiet())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, repository.Migrate(ctx, db.Driver))

	items := repository.NewItemRepository(db.Driver, repository.KeyByItemIndex, quiet())
	docs := repository.NewDocumentRepository(db.Driver, quiet())

	for run := 0; run < 2; run++ {
		w := NewBatchWriter(items, docs, 10, quiet())
		require.NoError(t, w.Add(ctx, result("12345", 3)))
		require.NoError(t, w.Close(ctx))
	}

	rows, err := items.ListItems(ctx, "12345")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	done, err := docs.ListCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"12345"}, done)
}
