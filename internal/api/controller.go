package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cadri-extractor/internal/async"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/ingest"
)

type controller struct {
	deps Deps
	log  *slog.Logger
}

func (ctrl *controller) fail(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      common.ErrorCode(err),
		RequestID: common.RequestIDFromContext(c.Request.Context()),
	})
}

var errUnavailable = errors.New("not configured on this server")

// Extract runs the orchestrator over text posted in the body. The work is
// detached from the request so a dropped client never leaves a half-written
// document; ProcessTimeout still bounds it.
func (ctrl *controller) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.fail(c, http.StatusBadRequest, err)
		return
	}
	v := common.NewValidator().Field("document_id", req.DocumentID, common.Required, common.DocumentID)
	if strings.TrimSpace(req.Text) == "" && len(req.Pages) == 0 {
		v.Field("text", req.Text, common.Required)
	}
	if err := v.Error(); err != nil {
		ctrl.fail(c, http.StatusBadRequest, err)
		return
	}

	doc := entity.NewSourceDocumentFromText(req.DocumentID, req.Text)
	if len(req.Pages) > 0 {
		doc = entity.NewSourceDocument(req.DocumentID, req.Pages)
	}
	ctx, cancel := common.WithTimeout(context.WithoutCancel(c.Request.Context()), ctrl.deps.ProcessTimeout)
	defer cancel()
	res, err := ctrl.deps.Processor.ProcessDocument(ctx, doc)
	if err != nil {
		ctrl.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, ExtractResponse{Status: string(res.Status), Result: res.Result})
}

func (ctrl *controller) Stats(c *gin.Context) {
	resp := StatsResponse{StatsSnapshot: ctrl.deps.Processor.Stats().Snapshot()}
	if l := ctrl.deps.Limiter; l != nil {
		inFlight, limit := l.CurrentUsage(), l.MaxConcurrent()
		resp.LLMInFlight, resp.LLMMaxConcurrent = &inFlight, &limit
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitJob queues a file path for asynchronous extraction.
func (ctrl *controller) SubmitJob(c *gin.Context) {
	if ctrl.deps.Queue == nil {
		ctrl.fail(c, http.StatusServiceUnavailable, fmt.Errorf("job queue %w", errUnavailable))
		return
	}
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.fail(c, http.StatusBadRequest, err)
		return
	}
	if !ingest.AllowedExt(filepath.Ext(req.Path)) {
		ctrl.fail(c, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", req.Path))
		return
	}
	job := async.Job{
		Path:        req.Path,
		Force:       req.Force,
		SubmittedAt: time.Now().UTC(),
		TraceID:     common.RequestIDFromContext(c.Request.Context()),
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	if err := ctrl.deps.Queue.Enqueue(c.Request.Context(), job); err != nil {
		ctrl.fail(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusAccepted, JobResponse{
		TraceID:     job.TraceID,
		DocumentID:  core.DocumentIDFromPath(req.Path),
		SubmittedAt: job.SubmittedAt,
	})
}

func (ctrl *controller) GetDocument(c *gin.Context) {
	if ctrl.deps.Documents == nil {
		ctrl.fail(c, http.StatusServiceUnavailable, fmt.Errorf("documents %w", errUnavailable))
		return
	}
	rec, err := ctrl.deps.Documents.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, common.ErrNotFound):
		ctrl.fail(c, http.StatusNotFound, err)
		return
	case err != nil:
		ctrl.log.Error("api.documents.get_failed", "document_id", c.Param("id"), "error", err)
		ctrl.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, DocumentResponse{
		DocumentID:  rec.DocumentID,
		Status:      string(rec.Status),
		Method:      string(rec.Method),
		TotalItems:  rec.TotalItems,
		Error:       rec.Error,
		ProcessedAt: rec.ProcessedAt,
	})
}

func (ctrl *controller) ListItems(c *gin.Context) {
	if ctrl.deps.Items == nil {
		ctrl.fail(c, http.StatusServiceUnavailable, fmt.Errorf("items %w", errUnavailable))
		return
	}
	rows, err := ctrl.deps.Items.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.log.Error("api.items.list_failed", "document_id", c.Param("id"), "error", err)
		ctrl.fail(c, http.StatusInternalServerError, err)
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		items = append(items, rowJSON(r))
	}
	c.JSON(http.StatusOK, gin.H{"document_id": c.Param("id"), "total_items": len(items), "items": items})
}

// Export streams the stored items as xlsx (default) or csv. Repeat
// ?document= to restrict the export.
func (ctrl *controller) Export(c *gin.Context) {
	if ctrl.deps.Export == nil {
		ctrl.fail(c, http.StatusServiceUnavailable, fmt.Errorf("export %w", errUnavailable))
		return
	}
	ids := c.QueryArray("document")
	format := c.DefaultQuery("format", "xlsx")

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case "xlsx":
		body, err = ctrl.deps.Export.ExportXLSX(c.Request.Context(), ids)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		body, err = ctrl.deps.Export.ExportCSV(c.Request.Context(), ids)
		contentType = "text/csv; charset=utf-8"
	default:
		ctrl.fail(c, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}
	if err != nil {
		ctrl.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="cadri_items.%s"`, format))
	c.Data(http.StatusOK, contentType, body)
}
