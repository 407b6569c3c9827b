package scheduler

import (
	"context"
	"fmt"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/journal"
	"chartlens/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs journal housekeeping: yesterday's digest and compression of old files.
type Scheduler struct {
	cron          *cron.Cron
	digest        interfaces.DigestWriter
	journalDir    string
	retentionDays int
	now           func() time.Time
}

func New(digest interfaces.DigestWriter, journalDir string, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		digest:        digest,
		journalDir:    journalDir,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// Register adds the housekeeping task on spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register housekeeping task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(context.Background(), "Scheduler started", "entries", len(s.cron.Entries()))
}

// Stop waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "Scheduler stopped")
}

// RunNow digests the previous day, then compresses files past retention.
func (s *Scheduler) RunNow() {
	ctx := context.Background()
	now := s.now()

	if _, err := s.digest.SummarizeDay(now.AddDate(0, 0, -1)); err != nil {
		logger.ErrorWithErr(ctx, "Digest task failed", err)
	}

	n, err := journal.CompressOlder(s.journalDir, s.retentionDays, now)
	if err != nil {
		logger.ErrorWithErr(ctx, "Journal compression failed", err)
		return
	}
	if n > 0 {
		logger.Info(ctx, "Journal files compressed", "count", n, "retention_days", s.retentionDays)
	}
}
