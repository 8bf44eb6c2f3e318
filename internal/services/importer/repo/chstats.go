package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"redditimport/internal/modkit/repokit"
	"redditimport/internal/services/importer/domain"
)

// StatsTable is the ClickHouse table holding one row per finished file
const StatsTable = "import_file_stats"

const statsDDL = `
	CREATE TABLE IF NOT EXISTS import_file_stats (
		run_id      UUID,
		finished_at DateTime64(3, 'UTC'),
		path        String,
		table_name  LowCardinality(String),
		format      LowCardinality(String),
		status      LowCardinality(String),
		lines       Int64,
		parsed      Int64,
		malformed   Int64,
		committed   Int64,
		failed      Int64,
		batches     Int64,
		bytes       Int64,
		elapsed_ms  Int64,
		error       String
	)
	ENGINE = MergeTree
	ORDER BY (table_name, finished_at)`

// CHStats writes file reports to ClickHouse for throughput dashboards
type CHStats struct {
	ch  repokit.Clickhouse
	now func() time.Time
}

// NewCHStats wraps a ClickHouse seam; a nil seam yields a nil sink
func NewCHStats(ch repokit.Clickhouse) *CHStats {
	if ch == nil {
		return nil
	}
	return &CHStats{ch: ch, now: time.Now}
}

// EnsureTable creates the stats table when absent
func (s *CHStats) EnsureTable(ctx context.Context) error {
	return s.ch.Exec(ctx, statsDDL)
}

// Record implements domain.StatsSink
func (s *CHStats) Record(ctx context.Context, runID string, r domain.FileReport) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return err
	}
	msg := r.Err
	if msg == "" {
		msg = r.Warning
	}
	row := []any{
		id,
		s.now().UTC(),
		r.Path,
		r.Table,
		r.Format,
		string(r.Status),
		int64(r.Lines),
		int64(r.Parsed),
		int64(r.Malformed),
		int64(r.Committed),
		int64(r.Failed),
		int64(r.Batches),
		r.Bytes,
		r.Elapsed.Milliseconds(),
		msg,
	}
	return s.ch.Insert(ctx, StatsTable, [][]any{row})
}
