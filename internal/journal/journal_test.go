package journal

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chartlens/internal/types"
)

func outcome(id string, isChart bool, report *types.Report, errMsg string) *types.Outcome {
	points := 0
	if report != nil {
		points = 3
	}
	return &types.Outcome{
		CycleID:  id,
		Image:    types.ImageMeta{ID: "img-" + id, Source: types.SourceUpload, Format: "png", Width: 1920, Height: 1080},
		Verdict:  types.Verdict{IsChart: isChart, Wide: true},
		Report:   report,
		Points:   points,
		Error:    errMsg,
		Duration: 1500 * time.Millisecond,
	}
}

func TestRecordAndReadDay(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	j := New(dir)
	j.now = func() time.Time { return day }
	defer j.Close()

	up := &types.Report{Direction: types.DirectionUp, Confidence: 85, Tier: types.TierStrong}
	for _, o := range []*types.Outcome{
		outcome("a", true, up, ""),
		outcome("b", false, nil, ""),
		outcome("c", true, nil, "model offline"),
	} {
		if err := j.RecordOutcome(o); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	lines, err := ReadDay(dir, day)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}

	want := []string{EventAnalyzed, EventRejected, EventFailed}
	for i, l := range lines {
		if l.Event != want[i] {
			t.Errorf("line %d: expected event %s, got %s", i, want[i], l.Event)
		}
	}
	if lines[0].Direction != "UP" || lines[0].Confidence != 85 || lines[0].Points != 3 {
		t.Errorf("Unexpected analyzed line %+v", lines[0])
	}
	if lines[0].DurationMs != 1500 {
		t.Errorf("Expected duration 1500ms, got %d", lines[0].DurationMs)
	}
	if lines[2].Error != "model offline" {
		t.Errorf("Expected error to be journaled, got %q", lines[2].Error)
	}
	if !lines[0].Time.Equal(day) {
		t.Errorf("Expected time %v, got %v", day, lines[0].Time)
	}
}

func TestRollsOverAtMidnight(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local)
	j := New(dir)
	j.now = func() time.Time { return now }
	defer j.Close()

	_ = j.RecordOutcome(outcome("a", false, nil, ""))
	now = now.Add(2 * time.Minute)
	_ = j.RecordOutcome(outcome("b", false, nil, ""))

	for _, d := range []time.Time{now.Add(-2 * time.Minute), now} {
		lines, err := ReadDay(dir, d)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(lines) != 1 {
			t.Errorf("Expected 1 line in %s, got %d", DailyPath(dir, d), len(lines))
		}
	}
}

func TestReadDayMissing(t *testing.T) {
	lines, err := ReadDay(t.TempDir(), time.Now())
	if err != nil || lines != nil {
		t.Errorf("Expected no lines and no error, got %v, %v", lines, err)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := filepath.Join(dir, "2026-01-01.jsonl")
	fresh := filepath.Join(dir, "2026-01-09.jsonl")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		if err := os.WriteFile(p, []byte(`{"event":"rejected"}`+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := now.AddDate(0, 0, -10)
	for _, p := range []string{old, other} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	n, err := CompressOlder(dir, 7, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 file compressed, got %d", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected the original to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected the recent file to stay")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("Expected unrelated files to stay")
	}

	f, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatalf("Expected gzip file, got %v", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Expected valid gzip, got %v", err)
	}
	body, _ := io.ReadAll(gr)
	if string(body) != `{"event":"rejected"}`+"\n" {
		t.Errorf("Unexpected content %q", body)
	}
}

func readGzip(t *testing.T, p string) string {
	t.Helper()
	f, err := os.Open(p)
	if err != nil {
		t.Fatalf("Expected gzip file, got %v", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Expected valid gzip, got %v", err)
	}
	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("Expected a complete gzip stream, got %v", err)
	}
	return string(body)
}

func TestCompressOlderReplacesBrokenArchive(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	stale := now.AddDate(0, 0, -10)
	content := `{"event":"analyzed"}` + "\n"

	broken := filepath.Join(dir, "2026-01-01.jsonl")
	if err := os.WriteFile(broken, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// a partial archive left by an interrupted run
	if err := os.WriteFile(broken+".gz", []byte{0x1f, 0x8b, 0x08}, 0o644); err != nil {
		t.Fatal(err)
	}

	done := filepath.Join(dir, "2026-01-02.jsonl")
	if err := os.WriteFile(done, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := gzipFile(done, done+".gz"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, p := range []string{broken, done} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	n, err := CompressOlder(dir, 7, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected only the broken archive to be rebuilt, got %d", n)
	}
	for _, p := range []string{broken, done} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", filepath.Base(p))
		}
		if got := readGzip(t, p+".gz"); got != content {
			t.Errorf("Expected %q in %s.gz, got %q", content, filepath.Base(p), got)
		}
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("Expected no temp files, got %v", leftovers)
	}
}

func TestGzipFileFailureLeavesNoArchive(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "missing.jsonl.gz")
	if err := gzipFile(filepath.Join(dir, "missing.jsonl"), dst); err == nil {
		t.Fatal("Expected an error for a missing source")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("Expected no archive to be created")
	}

	// a directory as the source fails mid-copy
	src := filepath.Join(dir, "folder.jsonl")
	if err := os.Mkdir(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := gzipFile(src, src+".gz"); err == nil {
		t.Fatal("Expected an error when the source cannot be read")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the source directory to remain, got %d entries", len(entries))
	}
}

func TestCompressOlderMissingDir(t *testing.T) {
	n, err := CompressOlder(filepath.Join(t.TempDir(), "nope"), 7, time.Now())
	if err != nil || n != 0 {
		t.Errorf("Expected nothing to do, got %d, %v", n, err)
	}
}
