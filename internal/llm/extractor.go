// Package llm extracts items by asking a language model for a JSON
// rendition of the certificate and parsing the reply defensively.
package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/fields"
	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

// DefaultMaxTextLength bounds the document text sent to the model, in runes.
const DefaultMaxTextLength = 50000

var processedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Extractor turns a document into items through a Completer.
type Extractor struct {
	completer     Completer
	maxTextLength int
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxTextLength sets the text budget in runes.
func WithMaxTextLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTextLength = n
		}
	}
}

// WithClock replaces time.Now for the processed_at fallback.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewExtractor(c Completer, opts ...Option) *Extractor {
	e := &Extractor{
		completer:     c,
		maxTextLength: DefaultMaxTextLength,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract sends the document to the model and parses the reply. Transport
// failures carry common.CodeRemoteCall; unusable replies carry
// common.CodeMalformedLLMResponse.
func (e *Extractor) Extract(ctx context.Context, doc *entity.SourceDocument) (*Response, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()
	user := BuildUserPrompt(doc.ID, doc.Text(), e.maxTextLength)

	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"document_id", doc.ID,
		"text_len", len(doc.Text()),
		"prompt_len", len(user),
	)

	reply, err := e.completer.Complete(ctx, SystemPrompt, user)
	if err != nil {
		e.logger.Error("llm.extract.remote_error",
			"req_id", rid, "document_id", doc.ID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if common.IsCode(err, common.CodeRemoteCall) {
			return nil, err
		}
		return nil, common.RemoteCallError("completion failed", err)
	}

	resp, err := e.Parse(doc.ID, reply)
	if err != nil {
		e.logger.Error("llm.extract.parse_error",
			"req_id", rid, "document_id", doc.ID, "error", err, "reply_len", len(reply),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"document_id", doc.ID,
		"items", resp.TotalItems,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// Parse runs the reply through object extraction, timestamp repair,
// sanitize and schema validation, then maps it to items.
func (e *Extractor) Parse(documentID, reply string) (*Response, error) {
	obj, ok := ExtractJSONObject(reply)
	if !ok {
		return nil, common.MalformedLLMResponseError("no JSON object in reply", nil)
	}
	obj = RepairTimestamps(obj)

	cleaned, _, err := NormalizeAndSanitizeJSON([]byte(obj), e.logger)
	if err != nil {
		return nil, common.MalformedLLMResponseError("reply is not valid JSON", err)
	}
	if err := ValidateJSONAgainstSchema(BuildExtractionJSONSchema(), cleaned); err != nil {
		e.logger.Error("llm.extract.schema_validation_failed", "document_id", documentID, "error", err)
		return nil, common.MalformedLLMResponseError("reply does not match schema", err)
	}

	var w wireResult
	if err := json.Unmarshal(cleaned, &w); err != nil {
		return nil, common.MalformedLLMResponseError("decode reply", err)
	}
	if w.TotalItems != len(w.Items) {
		e.logger.Warn("llm.extract.total_mismatch",
			"document_id", documentID, "declared", w.TotalItems, "actual", len(w.Items))
	}

	items := make([]entity.WasteItem, 0, len(w.Items))
	for i, wi := range w.Items {
		items = append(items, toWasteItem(documentID, i, wi))
	}
	return &Response{
		DocumentID:  documentID,
		TotalItems:  len(items),
		Items:       items,
		ProcessedAt: e.processedAt(w.ProcessedAt),
		Raw:         cleaned,
	}, nil
}

func (e *Extractor) processedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range processedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if s != "" {
		e.logger.Warn("llm.extract.processed_at_unparseable", "value", s)
	}
	return e.now()
}

func toWasteItem(documentID string, i int, w wireItem) entity.WasteItem {
	idx := strings.TrimSpace(w.ItemIndex)
	if idx == "" {
		idx = strconv.Itoa(i + 1)
	}
	if len(idx) == 1 {
		idx = "0" + idx
	}
	it := entity.WasteItem{
		DocumentID:             documentID,
		ItemIndex:              idx,
		ResidueCode:            w.ResidueCode,
		Description:            w.Description,
		Origin:                 w.Origin,
		Class:                  w.Class,
		PhysicalState:          w.PhysicalState,
		OrganicFlag:            w.OrganicFlag,
		Quantity:               w.Quantity,
		Unit:                   w.Unit,
		Composition:            w.Composition,
		Method:                 w.Method,
		Appearance:             w.Appearance,
		PackagingCodes:         w.PackagingCodes,
		PackagingDescriptions:  alignDescriptions(w.PackagingCodes, w.PackagingDescriptions),
		DestinationCode:        w.DestinationCode,
		DestinationDescription: w.DestinationDescription,
		SourcePage:             w.SourcePage,
		RawFragment:            w.RawFragment,
		Metadata:               w.Metadata,
	}
	if w.Generator != nil {
		w.Generator.Role = entity.RoleGenerator
		it.Generator = w.Generator
	}
	if w.Destination != nil {
		w.Destination.Role = entity.RoleDestination
		it.Destination = w.Destination
	}
	if it.Quantity != nil {
		it.Quantity = utils.Ptr(fields.NormalizeDecimal(*it.Quantity))
	}
	return it
}

// alignDescriptions pads or cuts descriptions to the number of codes.
func alignDescriptions(codes, descs []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	copy(out, descs)
	return out
}
