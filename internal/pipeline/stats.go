package pipeline

import "sync"

// Stats are the aggregate counters of one session. Safe for concurrent use.
type Stats struct {
	mu sync.Mutex
	s  StatsSnapshot
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Processed      int `json:"processed"`
	ItemsExtracted int `json:"items_extracted"`
	NoItems        int `json:"no_items"`
	Errors         int `json:"errors"`
	CacheHits      int `json:"cache_hits"`
	Structured     int `json:"structured"`
	Flexible       int `json:"flexible"`
	LLM            int `json:"llm"`
	LLMErrors      int `json:"llm_errors"`
	LLMParseErrors int `json:"llm_parse_errors"`
	FallbackUsed   int `json:"fallback_used"`
	DroppedItems   int `json:"dropped_items"`
}

func NewStats() *Stats { return &Stats{} }

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

// Update applies fn to the counters under the lock.
func (s *Stats) Update(fn func(*StatsSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.s)
}

// AddCacheHit counts a document skipped by the cache gate.
func (s *Stats) AddCacheHit() { s.Update(func(c *StatsSnapshot) { c.CacheHits++ }) }

// AddError counts a document whose text could not be read.
func (s *Stats) AddError() { s.Update(func(c *StatsSnapshot) { c.Errors++ }) }
