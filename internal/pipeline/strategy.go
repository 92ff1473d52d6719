package pipeline

import (
	"context"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/constants"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/fields"
	"github.com/joseph-ayodele/cadri-extractor/internal/flexible"
	"github.com/joseph-ayodele/cadri-extractor/internal/llm"
	"github.com/joseph-ayodele/cadri-extractor/internal/normalize"
	"github.com/joseph-ayodele/cadri-extractor/internal/segment"
)

// OutcomeKind classifies a strategy attempt.
type OutcomeKind int

const (
	// Success means at least one item survived the normalizer.
	Success OutcomeKind = iota
	Empty
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Empty:
		return "empty"
	default:
		return "error"
	}
}

// Outcome is the result of one strategy attempt.
type Outcome struct {
	Kind        OutcomeKind
	Items       []entity.WasteItem // normalized
	Dropped     []normalize.Drop
	ProcessedAt time.Time // zero unless the strategy reports its own
	Reason      error     // set when Kind == Failed
}

// Strategy is one way of reading items out of a document.
type Strategy interface {
	Name() constants.ExtractionMethod
	Attempt(ctx context.Context, doc *entity.SourceDocument) Outcome
}

func outcome(items []entity.WasteItem) Outcome {
	valid, dropped := normalize.Normalize(items)
	if len(valid) == 0 {
		return Outcome{Kind: Empty, Dropped: dropped}
	}
	return Outcome{Kind: Success, Items: valid, Dropped: dropped}
}

// Structured reads anchored item blocks.
type Structured struct{}

func (Structured) Name() constants.ExtractionMethod { return constants.MethodStructured }

func (Structured) Attempt(_ context.Context, doc *entity.SourceDocument) Outcome {
	blocks := segment.Segment(doc)
	items := make([]entity.WasteItem, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, fields.Extract(doc.ID, b))
	}
	return outcome(items)
}

// Flexible tries the flexible passes in order and keeps the first that yields items.
type Flexible struct{}

func (Flexible) Name() constants.ExtractionMethod { return constants.MethodFlexible }

func (Flexible) Attempt(_ context.Context, doc *entity.SourceDocument) Outcome {
	var dropped []normalize.Drop
	for _, p := range flexible.Passes {
		out := outcome(p.Run(doc))
		dropped = append(dropped, out.Dropped...)
		if out.Kind == Success {
			out.Dropped = dropped
			return out
		}
	}
	return Outcome{Kind: Empty, Dropped: dropped}
}

// LLM asks the model.
type LLM struct {
	Extractor *llm.Extractor
}

func (LLM) Name() constants.ExtractionMethod { return constants.MethodLLM }

func (s LLM) Attempt(ctx context.Context, doc *entity.SourceDocument) Outcome {
	resp, err := s.Extractor.Extract(ctx, doc)
	if err != nil {
		return Outcome{Kind: Failed, Reason: err}
	}
	out := outcome(resp.Items)
	out.ProcessedAt = resp.ProcessedAt
	return out
}
