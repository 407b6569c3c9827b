package recorder

import (
	"sync"
	"time"

	"chartlens/internal/types"

	"github.com/patrickmn/go-cache"
)

// CachedRecorder memoizes Stats per since value. Recording a new cycle
// drops every cached entry, and a Stats result computed while a record
// landed is returned but not cached.
type CachedRecorder struct {
	Recorder
	stats *cache.Cache

	mu  sync.Mutex
	gen uint64
}

var _ Recorder = (*CachedRecorder)(nil)

func NewCachedRecorder(inner Recorder, ttl time.Duration) *CachedRecorder {
	return &CachedRecorder{Recorder: inner, stats: cache.New(ttl, 2*ttl)}
}

func (c *CachedRecorder) RecordOutcome(o *types.Outcome) error {
	err := c.Recorder.RecordOutcome(o)
	c.mu.Lock()
	c.gen++
	c.stats.Flush()
	c.mu.Unlock()
	return err
}

func (c *CachedRecorder) Stats(since time.Time) (Stats, error) {
	key := "all"
	if !since.IsZero() {
		key = since.UTC().Format(time.RFC3339Nano)
	}
	c.mu.Lock()
	gen := c.gen
	v, ok := c.stats.Get(key)
	c.mu.Unlock()
	if ok {
		return v.(Stats), nil
	}

	s, err := c.Recorder.Stats(since)
	if err != nil {
		return Stats{}, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.stats.SetDefault(key, s)
	}
	c.mu.Unlock()
	return s, nil
}
