package recorder

import (
	"sync"
	"testing"
	"time"

	"chartlens/internal/types"
)

type countingRecorder struct {
	NoopRecorder
	statsCalls int
	recorded   int
}

func (c *countingRecorder) RecordOutcome(*types.Outcome) error {
	c.recorded++
	return nil
}

func (c *countingRecorder) Stats(time.Time) (Stats, error) {
	c.statsCalls++
	return Stats{Total: c.recorded}, nil
}

func TestCachedRecorderMemoizesStats(t *testing.T) {
	inner := &countingRecorder{}
	r := NewCachedRecorder(inner, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := r.Stats(time.Time{}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	if inner.statsCalls != 1 {
		t.Errorf("Expected 1 underlying Stats call, got %d", inner.statsCalls)
	}

	since := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	_, _ = r.Stats(since)
	if inner.statsCalls != 2 {
		t.Errorf("Expected a distinct since to miss the cache, got %d calls", inner.statsCalls)
	}
}

func TestCachedRecorderInvalidatesOnRecord(t *testing.T) {
	inner := &countingRecorder{}
	r := NewCachedRecorder(inner, time.Minute)

	s, _ := r.Stats(time.Time{})
	if s.Total != 0 {
		t.Fatalf("Expected 0, got %d", s.Total)
	}
	if err := r.RecordOutcome(&types.Outcome{CycleID: "x"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s, _ = r.Stats(time.Time{})
	if s.Total != 1 {
		t.Errorf("Expected fresh stats after a record, got %d", s.Total)
	}
}

// slowRecorder parks its first Stats call after the count was read,
// so a record can land while the stale result is in flight.
type slowRecorder struct {
	mu       sync.Mutex
	recorded int
	calls    int
	entered  chan struct{}
	release  chan struct{}
}

func (s *slowRecorder) RecordOutcome(*types.Outcome) error {
	s.mu.Lock()
	s.recorded++
	s.mu.Unlock()
	return nil
}

func (s *slowRecorder) Stats(time.Time) (Stats, error) {
	s.mu.Lock()
	total := s.recorded
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
	}
	return Stats{Total: total}, nil
}

func (s *slowRecorder) Close() error { return nil }

func TestCachedRecorderDropsStatsRacingARecord(t *testing.T) {
	inner := &slowRecorder{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewCachedRecorder(inner, time.Minute)

	done := make(chan Stats)
	go func() {
		s, _ := r.Stats(time.Time{})
		done <- s
	}()

	<-inner.entered
	if err := r.RecordOutcome(&types.Outcome{CycleID: "x"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	close(inner.release)

	if s := <-done; s.Total != 0 {
		t.Errorf("Expected the in-flight call to see 0, got %d", s.Total)
	}
	s, err := r.Stats(time.Time{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Total != 1 {
		t.Errorf("Expected 1 after the record, got %d", s.Total)
	}
}
