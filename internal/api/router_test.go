package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/async"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/export"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm"
	"github.com/joseph-ayodele/cadri-extractor/internal/pipeline"
)

const certificateText = `ENTIDADE GERADORA
Nome Cadastro na CETESB
INDUSTRIA QUIMICA ACME LTDA 123-456-7
01 Resíduo : D099 - Óleo usado
Origem : Manutenção
Classe : I Estado Físico: LIQUIDO O/I: O Qtde: 50 t/ano
`

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeQueue struct {
	mu   sync.Mutex
	jobs []async.Job
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}
func (q *fakeQueue) Shutdown(context.Context) {}

type fakeDocs struct{}

func (fakeDocs) UpsertDocuments(context.Context, []entity.DocumentRecord) error { return nil }
func (fakeDocs) ListCompleted(context.Context) ([]string, error)               { return nil, nil }
func (fakeDocs) CountByStatus(context.Context) (map[constants.DocumentStatus]int, error) {
	return nil, nil
}
func (fakeDocs) Get(_ context.Context, id string) (*entity.DocumentRecord, error) {
	if id != "12345" {
		return nil, common.NewAppError("NOT_FOUND", "document "+id, common.ErrNotFound)
	}
	return &entity.DocumentRecord{DocumentID: id, Status: constants.DocumentStatusDone, Method: constants.MethodStructured, TotalItems: 1}, nil
}

type fakeItems struct{ err error }

func (f fakeItems) UpsertItems(context.Context, []entity.ItemRow) (int, error) { return 0, nil }
func (f fakeItems) ListDocumentIDs(context.Context) ([]string, error)          { return []string{"12345"}, f.err }
func (f fakeItems) ListItems(_ context.Context, id string) ([]entity.ItemRow, error) {
	code := "D099"
	return []entity.ItemRow{{
		DocumentID: id,
		ItemIndex:  "01",
		Columns:    map[string]*string{"numero_residuo": &code},
		Method:     constants.MethodStructured,
	}}, f.err
}

func newTestRouter(q async.Queue, items fakeItems) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orch := pipeline.New(pipeline.WithLogger(quiet()), pipeline.WithClock(func() time.Time {
		return time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	}))
	proc := core.NewProcessor(quiet(), nil, orch, nil, nil)
	return NewRouter(Deps{
		Processor: proc,
		Queue:     q,
		Documents: fakeDocs{},
		Items:     items,
		Export:    export.NewService(items, quiet()),
		Logger:    quiet(),
	})
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(nil, fakeItems{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestExtract_ReturnsResultAndUpdatesStats(t *testing.T) {
	r := newTestRouter(nil, fakeItems{})

	w := do(r, http.MethodPost, "/api/v1/extract", ExtractRequest{DocumentID: "12345", Text: certificateText})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string `json:"status"`
		Result struct {
			DocumentID string `json:"numero_documento"`
			TotalItems int    `json:"total_items"`
			Method     string `json:"extraction_method"`
			Items      []struct {
				Index string `json:"item_numero"`
				Code  string `json:"numero_residuo"`
			} `json:"items"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DONE", resp.Status)
	assert.Equal(t, "12345", resp.Result.DocumentID)
	assert.Equal(t, 1, resp.Result.TotalItems)
	assert.Equal(t, "structured", resp.Result.Method)
	require.Len(t, resp.Result.Items, 1)
	assert.Equal(t, "D099", resp.Result.Items[0].Code)

	w = do(r, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats pipeline.StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Structured)
	assert.Equal(t, 1, stats.ItemsExtracted)
}

func TestExtract_EmptyTextIsNoItems(t *testing.T) {
	w := do(newTestRouter(nil, fakeItems{}), http.MethodPost, "/api/v1/extract",
		ExtractRequest{DocumentID: "99", Pages: []string{"sem resíduos"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"NO_ITEMS"`)
	assert.Contains(t, w.Body.String(), `"total_items":0`)
}

func TestExtract_Validation(t *testing.T) {
	r := newTestRouter(nil, fakeItems{})

	w := do(r, http.MethodPost, "/api/v1/extract", ExtractRequest{Text: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "document_id")

	w = do(r, http.MethodPost, "/api/v1/extract", ExtractRequest{DocumentID: "../etc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitJob(t *testing.T) {
	q := &fakeQueue{}
	r := newTestRouter(q, fakeItems{})

	w := do(r, http.MethodPost, "/api/v1/jobs", JobRequest{Path: "/data/in/12345.pdf", Force: true})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var resp JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "12345", resp.DocumentID)
	assert.NotEmpty(t, resp.TraceID)
	require.Len(t, q.jobs, 1)
	assert.True(t, q.jobs[0].Force)
	assert.Equal(t, resp.TraceID, q.jobs[0].TraceID)

	w = do(r, http.MethodPost, "/api/v1/jobs", JobRequest{Path: "/data/in/photo.heic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/jobs", map[string]any{"force": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	q.err = async.ErrQueueClosed
	w = do(r, http.MethodPost, "/api/v1/jobs", JobRequest{Path: "a.pdf"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSubmitJob_NoQueue(t *testing.T) {
	w := do(newTestRouter(nil, fakeItems{}), http.MethodPost, "/api/v1/jobs", JobRequest{Path: "a.pdf"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDocuments(t *testing.T) {
	r := newTestRouter(nil, fakeItems{})

	w := do(r, http.MethodGet, "/api/v1/documents/12345", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"DONE"`)

	w = do(r, http.MethodGet, "/api/v1/documents/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/documents/12345/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Total int              `json:"total_items"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "D099", body.Items[0]["numero_residuo"])
	assert.Nil(t, body.Items[0]["classe_residuo"])
	assert.Contains(t, body.Items[0], "classe_residuo")
}

func TestItems_Error(t *testing.T) {
	w := do(newTestRouter(nil, fakeItems{err: errors.New("db down")}), http.MethodGet, "/api/v1/documents/1/items", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExport(t *testing.T) {
	r := newTestRouter(nil, fakeItems{})

	w := do(r, http.MethodGet, "/api/v1/export?format=csv&document=12345", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "12345;D099")

	w = do(r, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cadri_items.xlsx")

	w = do(r, http.MethodGet, "/api/v1/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{
		Processor:    core.NewProcessor(quiet(), nil, pipeline.New(pipeline.WithLogger(quiet())), nil, nil),
		Logger:       quiet(),
		AllowOrigins: []string{"http://localhost:5173"},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStats_ReportsLimiterUsage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := llm.NewRateLimiter(4, 0)
	release, err := rl.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	r := NewRouter(Deps{
		Processor: core.NewProcessor(quiet(), nil, pipeline.New(pipeline.WithLogger(quiet())), nil, nil),
		Limiter:   rl,
		Logger:    quiet(),
	})
	w := do(r, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.LLMInFlight)
	require.NotNil(t, resp.LLMMaxConcurrent)
	assert.Equal(t, 1, *resp.LLMInFlight)
	assert.Equal(t, 4, *resp.LLMMaxConcurrent)

	// Without a limiter the llm fields are left out.
	w = do(newTestRouter(nil, fakeItems{}), http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "llm_in_flight")
}

type ctxRecorder struct {
	stats *pipeline.Stats
	err   error
	dl    bool
}

func (p *ctxRecorder) ProcessDocument(ctx context.Context, doc *entity.SourceDocument) (*core.FileResult, error) {
	p.err = ctx.Err()
	_, p.dl = ctx.Deadline()
	return &core.FileResult{DocumentID: doc.ID, Status: constants.DocumentStatusNoItems}, nil
}

func (p *ctxRecorder) Stats() *pipeline.Stats { return p.stats }

func TestExtract_DetachedFromRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	proc := &ctxRecorder{stats: pipeline.NewStats()}
	r := NewRouter(Deps{Processor: proc, Logger: quiet(), ProcessTimeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body, err := json.Marshal(ExtractRequest{DocumentID: "12345", Text: certificateText})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, proc.err)
	assert.True(t, proc.dl)
}
