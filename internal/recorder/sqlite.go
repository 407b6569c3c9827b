package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"chartlens/internal/logger"
	"chartlens/internal/types"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version. Version 1 switched
// cycles.timestamp from unix seconds to unix milliseconds.
const schemaVersion = 1

// SQLiteRecorder persists one row per finished cycle.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// cycleRow maps onto the cycles table
type cycleRow struct {
	Timestamp  int64          `db:"timestamp"` // unix milliseconds
	CycleID    string         `db:"cycle_id"`
	Source     string         `db:"source"`
	Format     string         `db:"format"`
	Width      int            `db:"width"`
	Height     int            `db:"height"`
	IsChart    bool           `db:"is_chart"`
	Direction  sql.NullString `db:"direction"`
	Confidence sql.NullInt64  `db:"confidence"`
	Tier       sql.NullString `db:"tier"`
	Points     int            `db:"points"`
	Error      sql.NullString `db:"error"`
	DurationMs int64          `db:"duration_ms"`
}

type statsRow struct {
	Total    int             `db:"total"`
	Analyzed sql.NullInt64   `db:"analyzed"`
	Failed   sql.NullInt64   `db:"failed"`
	Up       sql.NullInt64   `db:"up"`
	Down     sql.NullInt64   `db:"down"`
	MeanConf sql.NullFloat64 `db:"mean_conf"`
	First    sql.NullInt64   `db:"first"`
	Last     sql.NullInt64   `db:"last"`
}

var _ Recorder = (*SQLiteRecorder)(nil)

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(context.Background(), "SQLite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			cycle_id      TEXT NOT NULL,
			source        TEXT,
			format        TEXT,
			width         INTEGER,
			height        INTEGER,
			is_chart      INTEGER,
			direction     TEXT,
			confidence    INTEGER,
			tier          TEXT,
			points        INTEGER,
			error         TEXT,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}

	var version int
	if err := r.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`UPDATE cycles SET timestamp = timestamp * 1000`); err != nil {
		return fmt.Errorf("convert timestamps to milliseconds: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordOutcome(o *types.Outcome) error {
	if o == nil {
		return errors.New("nil outcome")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := o.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	row := cycleRow{
		Timestamp:  ts.UnixMilli(),
		CycleID:    o.CycleID,
		Source:     string(o.Image.Source),
		Format:     o.Image.Format,
		Width:      o.Image.Width,
		Height:     o.Image.Height,
		IsChart:    o.Verdict.IsChart,
		Points:     o.Points,
		Error:      sql.NullString{String: o.Error, Valid: o.Error != ""},
		DurationMs: o.Duration.Milliseconds(),
	}
	if o.Report != nil {
		row.Direction = sql.NullString{String: string(o.Report.Direction), Valid: true}
		row.Tier = sql.NullString{String: string(o.Report.Tier), Valid: true}
		row.Confidence = sql.NullInt64{Int64: int64(o.Report.Confidence), Valid: true}
	}

	_, err := r.db.NamedExec(`INSERT INTO cycles (
		timestamp, cycle_id, source, format, width, height, is_chart,
		direction, confidence, tier, points, error, duration_ms
	) VALUES (
		:timestamp, :cycle_id, :source, :format, :width, :height, :is_chart,
		:direction, :confidence, :tier, :points, :error, :duration_ms
	)`, row)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// Stats aggregates every cycle recorded at or after since, to the millisecond.
// A zero since covers everything.
func (r *SQLiteRecorder) Stats(since time.Time) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var from int64
	if !since.IsZero() {
		from = since.UnixMilli()
	}

	var agg statsRow
	err := r.db.Get(&agg, `SELECT
			COUNT(*) AS total,
			SUM(CASE WHEN error IS NULL AND is_chart = 1 THEN 1 ELSE 0 END) AS analyzed,
			SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END) AS failed,
			SUM(CASE WHEN error IS NULL AND direction = 'UP' THEN 1 ELSE 0 END) AS up,
			SUM(CASE WHEN error IS NULL AND direction = 'DOWN' THEN 1 ELSE 0 END) AS down,
			AVG(CASE WHEN error IS NULL THEN confidence END) AS mean_conf,
			MIN(timestamp) AS first,
			MAX(timestamp) AS last
		FROM cycles WHERE timestamp >= ?`, from)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}

	s := Stats{
		Total:          agg.Total,
		Analyzed:       int(agg.Analyzed.Int64),
		Failed:         int(agg.Failed.Int64),
		Up:             int(agg.Up.Int64),
		Down:           int(agg.Down.Int64),
		MeanConfidence: agg.MeanConf.Float64,
	}
	s.Rejected = s.Total - s.Analyzed - s.Failed
	if agg.First.Valid {
		t := time.UnixMilli(agg.First.Int64)
		s.Since = &t
	}
	if agg.Last.Valid {
		t := time.UnixMilli(agg.Last.Int64)
		s.Last = &t
	}
	return s, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
