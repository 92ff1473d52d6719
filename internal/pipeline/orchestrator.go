// Package pipeline runs the extraction strategies for one document in
// order and records the aggregate counters.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm"
	"github.com/joseph-ayodele/cadri-extractor/internal/metadata"
)

// Orchestrator tries strategies in order and stops at the first Success.
type Orchestrator struct {
	strategies []Strategy
	stats      *Stats
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*config)

type config struct {
	extractor  *llm.Extractor
	llmFirst   bool
	strategies []Strategy
	stats      *Stats
	now        func() time.Time
	logger     *slog.Logger
}

// WithLLM enables the LLM strategy. By default it runs after the pattern strategies.
func WithLLM(e *llm.Extractor) Option { return func(c *config) { c.extractor = e } }

// WithLLMFirst puts the LLM strategy first; the pattern strategies become its fallback.
func WithLLMFirst(on bool) Option { return func(c *config) { c.llmFirst = on } }

// WithStrategies replaces the strategy list entirely.
func WithStrategies(s ...Strategy) Option { return func(c *config) { c.strategies = s } }

func WithStats(s *Stats) Option { return func(c *config) { c.stats = s } }

func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }

func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

func New(opts ...Option) *Orchestrator {
	c := config{now: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(&c)
	}
	if c.stats == nil {
		c.stats = NewStats()
	}

	strategies := c.strategies
	if strategies == nil {
		strategies = []Strategy{Structured{}, Flexible{}}
		if c.extractor != nil {
			l := LLM{Extractor: c.extractor}
			if c.llmFirst {
				strategies = append([]Strategy{l}, strategies...)
			} else {
				strategies = append(strategies, l)
			}
		}
	}
	return &Orchestrator{strategies: strategies, stats: c.stats, now: c.now, logger: c.logger}
}

// Stats returns the live counters.
func (o *Orchestrator) Stats() *Stats { return o.stats }

// Strategies returns the strategy names in the order they are tried.
func (o *Orchestrator) Strategies() []constants.ExtractionMethod {
	out := make([]constants.ExtractionMethod, len(o.strategies))
	for i, s := range o.strategies {
		out[i] = s.Name()
	}
	return out
}

// Extract produces the result for one document. It never fails: a document
// no strategy can read yields TotalItems == 0 tagged with the last strategy tried.
func (o *Orchestrator) Extract(ctx context.Context, doc *entity.SourceDocument) *entity.ExtractionResult {
	log := o.logger.With("document_id", doc.ID)
	meta := metadata.Extract(doc.Text())

	result := &entity.ExtractionResult{DocumentID: doc.ID, Items: []entity.WasteItem{}}
	for _, s := range o.strategies {
		name := s.Name()
		result.Method = name
		log.Debug("pipeline.strategy.start", "strategy", name)

		out := s.Attempt(ctx, doc)
		if n := len(out.Dropped); n > 0 {
			for _, d := range out.Dropped {
				log.Warn("pipeline.item.dropped", "strategy", name, "item_index", d.Item.ItemIndex,
					"code", d.Item.Code(), "reason", d.Reason)
			}
			o.stats.Update(func(c *StatsSnapshot) { c.DroppedItems += n })
		}

		switch out.Kind {
		case Success:
			result.Items = out.Items
			result.TotalItems = len(out.Items)
			result.ProcessedAt = out.ProcessedAt
			attach(result.Items, meta)
			log.Info("pipeline.strategy.success", "strategy", name, "items", result.TotalItems)
			o.finish(result)
			return result
		case Empty:
			log.Info("pipeline.strategy.empty", "strategy", name)
		case Failed:
			parse := common.IsCode(out.Reason, common.CodeMalformedLLMResponse)
			log.Warn("pipeline.strategy.error", "strategy", name, "error", out.Reason,
				"kind", common.ErrorCode(out.Reason))
			o.stats.Update(func(c *StatsSnapshot) {
				if parse {
					c.LLMParseErrors++
				} else {
					c.LLMErrors++
				}
				c.FallbackUsed++
			})
		}
	}

	log.Info("pipeline.no_items", "strategy", result.Method)
	o.finish(result)
	return result
}

func (o *Orchestrator) finish(r *entity.ExtractionResult) {
	if r.ProcessedAt.IsZero() {
		r.ProcessedAt = o.now()
	}
	o.stats.Update(func(c *StatsSnapshot) {
		c.Processed++
		if r.TotalItems == 0 {
			c.NoItems++
			return
		}
		c.ItemsExtracted += r.TotalItems
		switch r.Method {
		case constants.MethodStructured:
			c.Structured++
		case constants.MethodFlexible:
			c.Flexible++
		case constants.MethodLLM:
			c.LLM++
		}
	})
}

// attach points every item at one shared copy of the document-level data.
// Pattern-extracted values win; values the model returned fill the gaps.
func attach(items []entity.WasteItem, meta metadata.Result) {
	gen := clone(meta.Generator)
	dest := clone(meta.Destination)
	var md *entity.DocumentMetadata
	if meta.Metadata != nil {
		c := *meta.Metadata
		md = &c
	}

	for _, it := range items {
		gen = mergeOrg(gen, it.Generator)
		dest = mergeOrg(dest, it.Destination)
		if it.Metadata != nil {
			if md == nil {
				c := *it.Metadata
				md = &c
			} else {
				md.Merge(it.Metadata)
			}
		}
	}
	for i := range items {
		items[i].Generator = gen
		items[i].Destination = dest
		items[i].Metadata = md
	}
}

func clone(o *entity.Organization) *entity.Organization {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func mergeOrg(dst, src *entity.Organization) *entity.Organization {
	if src == nil {
		return dst
	}
	if dst == nil {
		return clone(src)
	}
	dst.Merge(src)
	return dst
}
