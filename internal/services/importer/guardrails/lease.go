package guardrails

import (
	"context"
	"errors"
	"time"

	"redditimport/internal/modkit/repokit"
	"redditimport/internal/platform/logger"
)

// ErrLeaseHeld signals another importer owns the file already
var ErrLeaseHeld = errors.New("importer: file lease already held")

const leaseDDL = `
	CREATE TABLE IF NOT EXISTS import_leases (
		path       TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL,
		claimed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Lease runs do while holding a claim on path
type Lease func(ctx context.Context, path, runID string, do func(context.Context) error) error

// MakeFileLease returns a Lease backed by the import_leases table so several
// importer processes can share one data directory. A claim older than ttl is
// considered abandoned by a crashed run and may be taken over
func MakeFileLease(db repokit.TxRunner, ttl time.Duration) Lease {
	return func(ctx context.Context, path, runID string, do func(context.Context) error) error {
		var claimed bool
		err := db.Tx(ctx, func(q repokit.Queryer) error {
			if _, err := q.Exec(ctx, leaseDDL); err != nil {
				return err
			}
			rows, err := q.Query(ctx, `
				INSERT INTO import_leases (path, run_id)
				VALUES ($1, $2)
				ON CONFLICT (path) DO UPDATE
				SET run_id = EXCLUDED.run_id, claimed_at = now()
				WHERE import_leases.claimed_at < now() - make_interval(secs => $3)
				RETURNING true
			`, path, runID, ttl.Seconds())
			if err != nil {
				return err
			}
			defer rows.Close()
			if rows.Next() {
				claimed = true
			}
			return rows.Err()
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld
		}
		defer func() {
			rel := context.WithoutCancel(ctx)
			if _, err := db.Exec(rel, `DELETE FROM import_leases WHERE path = $1 AND run_id = $2`, path, runID); err != nil {
				logger.C(ctx).Warn().Err(err).Str("path", path).Msg("lease release failed")
			}
		}()
		return do(ctx)
	}
}
