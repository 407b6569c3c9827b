package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/journal"

	"github.com/gocarina/gocsv"
)

// Row is one line of the daily digest CSV
type Row struct {
	Source         string `csv:"source"`
	Cycles         int    `csv:"cycles"`
	Analyzed       int    `csv:"analyzed"`
	Rejected       int    `csv:"rejected"`
	Failed         int    `csv:"failed"`
	Up             int    `csv:"up"`
	Down           int    `csv:"down"`
	MeanConfidence string `csv:"mean_confidence"` // two decimals
}

// tally aggregates one capture source's cycles
type tally struct {
	source          string
	analyzed        int
	rejected        int
	failed          int
	up              int
	down            int
	confidenceSum   int
	confidenceCount int
}

func (r *tally) add(l journal.Line) {
	switch l.Event {
	case journal.EventAnalyzed:
		r.analyzed++
		if l.Direction == "UP" {
			r.up++
		} else {
			r.down++
		}
		r.confidenceSum += l.Confidence
		r.confidenceCount++
	case journal.EventRejected:
		r.rejected++
	case journal.EventFailed:
		r.failed++
	}
}

func (r *tally) merge(o *tally) {
	r.analyzed += o.analyzed
	r.rejected += o.rejected
	r.failed += o.failed
	r.up += o.up
	r.down += o.down
	r.confidenceSum += o.confidenceSum
	r.confidenceCount += o.confidenceCount
}

func (r *tally) row() *Row {
	mean := 0.0
	if r.confidenceCount > 0 {
		mean = float64(r.confidenceSum) / float64(r.confidenceCount)
	}
	return &Row{
		Source:         r.source,
		Cycles:         r.analyzed + r.rejected + r.failed,
		Analyzed:       r.analyzed,
		Rejected:       r.rejected,
		Failed:         r.failed,
		Up:             r.up,
		Down:           r.down,
		MeanConfidence: fmt.Sprintf("%.2f", mean),
	}
}

type summarizer struct {
	dir string
}

var _ interfaces.DigestWriter = (*summarizer)(nil)

func NewSummarizer(journalDir string) interfaces.DigestWriter {
	return &summarizer{dir: journalDir}
}

// CSVPath is where the digest for t's day is written.
func CSVPath(journalDir string, t time.Time) string {
	return filepath.Join(journalDir, "digest", t.Format("2006-01-02")+".csv")
}

func (s *summarizer) SummarizeDay(t time.Time) (string, error) {
	lines, err := journal.ReadDay(s.dir, t)
	if err != nil {
		return "", fmt.Errorf("read journal: %w", err)
	}
	if len(lines) == 0 {
		return "", nil
	}

	tallies := map[string]*tally{}
	for _, l := range lines {
		r := tallies[l.Source]
		if r == nil {
			r = &tally{source: l.Source}
			tallies[l.Source] = r
		}
		r.add(l)
	}
	keys := make([]string, 0, len(tallies))
	for k := range tallies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := &tally{source: "TOTAL"}
	rows := make([]*Row, 0, len(keys)+1)
	for _, k := range keys {
		rows = append(rows, tallies[k].row())
		total.merge(tallies[k])
	}
	rows = append(rows, total.row())

	outPath := CSVPath(s.dir, t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := gocsv.Marshal(rows, out); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return outPath, nil
}

// ReadCSV loads a digest written by SummarizeDay.
func ReadCSV(path string) ([]*Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse digest: %w", err)
	}
	return rows, nil
}
