package api

import (
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/pipeline"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ExtractRequest carries already extracted text. Either Text (optionally with
// "--- PÁGINA N ---" markers) or Pages must be set.
type ExtractRequest struct {
	DocumentID string   `json:"document_id"`
	Text       string   `json:"text,omitempty"`
	Pages      []string `json:"pages,omitempty"`
}

// ExtractResponse wraps the result with its sink status.
type ExtractResponse struct {
	Status string                   `json:"status"`
	Result *entity.ExtractionResult `json:"result"`
}

// StatsResponse is the counter snapshot plus, when the LLM is enabled, the
// limiter occupancy.
type StatsResponse struct {
	pipeline.StatsSnapshot
	LLMInFlight      *int `json:"llm_in_flight,omitempty"`
	LLMMaxConcurrent *int `json:"llm_max_concurrent,omitempty"`
}

// JobRequest queues an input file already visible to the daemon.
type JobRequest struct {
	Path  string `json:"path" binding:"required"`
	Force bool   `json:"force"`
}

type JobResponse struct {
	TraceID     string    `json:"trace_id"`
	DocumentID  string    `json:"document_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DocumentResponse is one row of the documents table.
type DocumentResponse struct {
	DocumentID  string    `json:"document_id"`
	Status      string    `json:"status"`
	Method      string    `json:"extraction_method,omitempty"`
	TotalItems  int       `json:"total_items"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// rowJSON renders a stored row with every flat column, null when absent.
func rowJSON(r entity.ItemRow) map[string]any {
	out := make(map[string]any, len(entity.FlatColumns)+4)
	out["numero_documento"] = r.DocumentID
	out["item_numero"] = r.ItemIndex
	for _, c := range entity.FlatColumns {
		if v := r.Columns[c]; v != nil {
			out[c] = *v
		} else {
			out[c] = nil
		}
	}
	out["extraction_method"] = r.Method
	out["processed_at"] = r.ProcessedAt
	return out
}
