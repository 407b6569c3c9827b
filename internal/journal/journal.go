package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const dayLayout = "2006-01-02"

// Line is one journal record as written to disk
type Line struct {
	Time       time.Time `json:"time"`
	Event      string    `json:"event"`
	CycleID    string    `json:"cycle_id"`
	Source     string    `json:"source"`
	Format     string    `json:"format"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	IsChart    bool      `json:"is_chart"`
	Direction  string    `json:"direction,omitempty"`
	Confidence int       `json:"confidence,omitempty"`
	Tier       string    `json:"tier,omitempty"`
	Points     int       `json:"points"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Event names
const (
	EventAnalyzed = "analyzed"
	EventRejected = "rejected"
	EventFailed   = "failed"
)

// Journal appends one JSON line per finished cycle to <dir>/<yyyy-mm-dd>.jsonl.
// Files roll over at local midnight.
type Journal struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
	log  *zap.Logger
}

var _ interfaces.OutcomeSink = (*Journal)(nil)

func New(dir string) *Journal {
	return &Journal{dir: dir, now: time.Now}
}

func (j *Journal) Dir() string { return j.dir }

// DailyPath is the journal file for the day containing t.
func DailyPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(dayLayout)+".jsonl")
}

func (j *Journal) RecordOutcome(o *types.Outcome) error {
	if o == nil {
		return errors.New("nil outcome")
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if err := j.rollLocked(now); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Time("time", now),
		zap.String("cycle_id", o.CycleID),
		zap.String("source", string(o.Image.Source)),
		zap.String("format", o.Image.Format),
		zap.Int("width", o.Image.Width),
		zap.Int("height", o.Image.Height),
		zap.Bool("is_chart", o.Verdict.IsChart),
		zap.Int("points", o.Points),
		zap.Int64("duration_ms", o.Duration.Milliseconds()),
	}
	if o.Report != nil {
		fields = append(fields,
			zap.String("direction", string(o.Report.Direction)),
			zap.Int("confidence", o.Report.Confidence),
			zap.String("tier", string(o.Report.Tier)),
		)
	}
	if o.Error != "" {
		fields = append(fields, zap.String("error", o.Error))
	}

	j.log.Info(eventOf(o), fields...)
	return j.log.Sync()
}

func eventOf(o *types.Outcome) string {
	switch {
	case o.Failed():
		return EventFailed
	case o.Accepted():
		return EventAnalyzed
	default:
		return EventRejected
	}
}

// rollLocked opens the file for now's day, closing the previous one.
func (j *Journal) rollLocked(now time.Time) error {
	day := now.Format(dayLayout)
	if j.file != nil && j.day == day {
		return nil
	}
	j.closeLocked()

	p := DailyPath(j.dir, now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:     "event",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
	})
	j.log = zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel))
	j.file = f
	j.day = day
	return nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *Journal) closeLocked() error {
	if j.file == nil {
		return nil
	}
	_ = j.log.Sync()
	err := j.file.Close()
	j.file, j.log, j.day = nil, nil, ""
	return err
}

// ReadDay parses the journal for the day containing t. A missing file yields no lines.
// Lines that do not parse are skipped.
func ReadDay(dir string, t time.Time) ([]Line, error) {
	f, err := os.Open(DailyPath(dir, t))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var l Line
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			continue
		}
		lines = append(lines, l)
	}
	return lines, sc.Err()
}
