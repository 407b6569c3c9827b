package digestobs

import (
	"context"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/trace"
)

type observableDigest struct {
	writer interfaces.DigestWriter
}

var _ interfaces.DigestWriter = (*observableDigest)(nil)

func Wrap(w interfaces.DigestWriter) interfaces.DigestWriter {
	return &observableDigest{writer: w}
}

func (od *observableDigest) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "digest.SummarizeDay")
	defer span.End()

	date := t.Format("2006-01-02")
	logger.InfoSkip(ctx, 1, "Starting daily digest", "date", date)

	csvPath, err := od.writer.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Daily digest failed", err, "date", date)
		return "", err
	}
	if csvPath == "" {
		logger.InfoSkip(ctx, 1, "No cycles journaled for digest", "date", date)
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "Daily digest written", "date", date, "csv_path", csvPath)
	return csvPath, nil
}
