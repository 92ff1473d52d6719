package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Source lists document IDs already processed in a previous session.
type Source interface {
	ListCompleted(ctx context.Context) ([]string, error)
}

// Recorder persists a processed document ID outside the process.
type Recorder interface {
	Record(ctx context.Context, documentID string) error
}

// Gate is the in-memory set of processed document IDs. Safe for concurrent use.
type Gate struct {
	mu       sync.RWMutex
	seen     map[string]struct{}
	loaded   bool
	recorder Recorder
	log      *slog.Logger
}

type Option func(*Gate)

// WithRecorder writes every Mark through to r.
func WithRecorder(r Recorder) Option { return func(g *Gate) { g.recorder = r } }

func WithLogger(l *slog.Logger) Option { return func(g *Gate) { g.log = l } }

func NewGate(opts ...Option) *Gate {
	g := &Gate{seen: make(map[string]struct{}), log: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Load fills the gate from src. Only the first successful call per gate has
// any effect; later calls return nil without touching src.
func (g *Gate) Load(ctx context.Context, src Source) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loaded {
		return nil
	}
	ids, err := src.ListCompleted(ctx)
	if err != nil {
		g.log.Error("cache.load.failed", "error", err)
		return fmt.Errorf("load processed documents: %w", err)
	}
	for _, id := range ids {
		g.seen[id] = struct{}{}
	}
	g.loaded = true
	g.log.Info("cache.load.ok", "documents", len(ids), "size", len(g.seen))
	return nil
}

// Seen reports whether documentID was already processed.
func (g *Gate) Seen(documentID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.seen[documentID]
	return ok
}

// Mark records documentID as processed. The in-memory set is updated even
// when the recorder fails.
func (g *Gate) Mark(ctx context.Context, documentID string) error {
	g.mu.Lock()
	g.seen[documentID] = struct{}{}
	g.mu.Unlock()

	if g.recorder == nil {
		return nil
	}
	if err := g.recorder.Record(ctx, documentID); err != nil {
		g.log.Warn("cache.record.failed", "document_id", documentID, "error", err)
		return fmt.Errorf("record %s: %w", documentID, err)
	}
	return nil
}

// Len returns the number of known document IDs.
func (g *Gate) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.seen)
}

// Sources merges several sources into one.
type Sources []Source

func (s Sources) ListCompleted(ctx context.Context) ([]string, error) {
	var out []string
	for _, src := range s {
		ids, err := src.ListCompleted(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}
