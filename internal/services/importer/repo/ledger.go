package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"redditimport/internal/modkit/repokit"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/store"
	"redditimport/internal/services/importer/domain"
)

// LedgerTable records every file attempt
const LedgerTable = "import_files"

const ledgerDDL = `
	CREATE TABLE IF NOT EXISTS import_files (
		run_id      UUID        NOT NULL,
		path        TEXT        NOT NULL,
		table_name  TEXT        NOT NULL,
		format      TEXT        NOT NULL,
		status      TEXT        NOT NULL,
		lines       BIGINT      NOT NULL DEFAULT 0,
		parsed      BIGINT      NOT NULL DEFAULT 0,
		malformed   BIGINT      NOT NULL DEFAULT 0,
		committed   BIGINT      NOT NULL DEFAULT 0,
		failed      BIGINT      NOT NULL DEFAULT 0,
		batches     BIGINT      NOT NULL DEFAULT 0,
		bytes       BIGINT      NOT NULL DEFAULT 0,
		warning     TEXT,
		error       TEXT,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		elapsed_ms  BIGINT,
		PRIMARY KEY (run_id, path)
	)`

type (
	// Ledger is a Postgres binder for domain.LedgerRepo
	Ledger        struct{}
	ledgerQueries struct{ q repokit.Queryer }
)

// NewLedger returns a Postgres binder for domain.LedgerRepo
func NewLedger() repokit.Binder[domain.LedgerRepo] { return Ledger{} }

// Bind implements repokit.Binder
func (Ledger) Bind(q repokit.Queryer) domain.LedgerRepo { return &ledgerQueries{q: q} }

func runUUID(runID string) (uuid.UUID, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return uuid.Nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "run id %q", runID)
	}
	return id, nil
}

// EnsureLedger creates import_files when absent
func (r *ledgerQueries) EnsureLedger(ctx context.Context) error {
	_, err := r.q.Exec(ctx, ledgerDDL)
	return err
}

// StartFile marks a file as running for this run (idempotent)
func (r *ledgerQueries) StartFile(ctx context.Context, runID string, f domain.SourceFile) error {
	id, err := runUUID(runID)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO import_files (run_id, path, table_name, format, status, started_at)
		VALUES ($1, $2, $3, $4, 'running', now())
		ON CONFLICT (run_id, path) DO UPDATE
		SET status = 'running', started_at = now(), finished_at = null, error = null, warning = null
	`, id, f.Path, f.Table(), f.Class.Format.String())
	return err
}

// FinishFile stores the final counters of a file
func (r *ledgerQueries) FinishFile(ctx context.Context, runID string, rep domain.FileReport) error {
	id, err := runUUID(runID)
	if err != nil {
		return err
	}
	return store.ExecOne(ctx, r.q, `
		UPDATE import_files SET
			status = $3,
			lines = $4,
			parsed = $5,
			malformed = $6,
			committed = $7,
			failed = $8,
			batches = $9,
			bytes = $10,
			warning = NULLIF($11, ''),
			error = NULLIF($12, ''),
			finished_at = now(),
			elapsed_ms = $13
		WHERE run_id = $1 AND path = $2
	`,
		id, rep.Path, string(rep.Status), rep.Lines, rep.Parsed, rep.Malformed, rep.Committed,
		rep.Failed, rep.Batches, rep.Bytes, rep.Warning, rep.Err, rep.Elapsed.Milliseconds(),
	)
}

// RecentFiles lists the latest attempts across runs, newest first
func RecentFiles(ctx context.Context, q repokit.Queryer, limit int) ([]domain.FileReport, error) {
	if limit <= 0 {
		limit = 50
	}
	return store.Many(ctx, q, scanReport, `
		SELECT path, table_name, format, status, lines, parsed, malformed, committed, failed,
		       batches, bytes, coalesce(warning, ''), coalesce(error, ''), started_at, coalesce(elapsed_ms, 0)
		FROM import_files
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
}

// LastAttempt returns the newest ledger row for path or perr.ErrNotFound
func LastAttempt(ctx context.Context, q repokit.Queryer, path string) (domain.FileReport, error) {
	return store.One(ctx, q, scanReport, `
		SELECT path, table_name, format, status, lines, parsed, malformed, committed, failed,
		       batches, bytes, coalesce(warning, ''), coalesce(error, ''), started_at, coalesce(elapsed_ms, 0)
		FROM import_files
		WHERE path = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, path)
}

// CountCommitted sums committed rows recorded for a table
func CountCommitted(ctx context.Context, q repokit.Queryer, table string) (int64, error) {
	return store.Scalar[int64](ctx, q,
		`SELECT coalesce(sum(committed), 0)::bigint FROM import_files WHERE table_name = $1`, table)
}

func scanReport(row store.Row) (domain.FileReport, error) {
	var (
		r         domain.FileReport
		status    string
		elapsedMS int64
		started   time.Time
	)
	err := row.Scan(&r.Path, &r.Table, &r.Format, &status, &r.Lines, &r.Parsed, &r.Malformed,
		&r.Committed, &r.Failed, &r.Batches, &r.Bytes, &r.Warning, &r.Err, &started, &elapsedMS)
	if err != nil {
		return r, err
	}
	r.Status = domain.FileStatus(status)
	r.StartedAt = started
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return r, nil
}
