package service

import (
	"context"
	"math/rand"
	"time"

	"redditimport/internal/modkit/repokit"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/services/importer/domain"
	"redditimport/internal/services/importer/guardrails"
)

// Loader writes batches into one destination table with per row failure isolation
type Loader struct {
	DB     repokit.TxRunner
	Tables repokit.Binder[domain.TableRepo]

	// MaxRetries is the number of attempts for a transaction that hit a
	// serialization failure, deadlock or lock timeout; <=0 -> 1
	MaxRetries int
	// RetryBase is the base backoff between attempts; <=0 -> 250ms
	RetryBase time.Duration

	Timeouts guardrails.Timeouts
}

// Flush inserts batch as one multi row statement. When the server rejects the
// values the batch is rolled back and every row is retried in its own
// transaction so one bad row cannot sink its neighbours. failed holds the
// rejected rows with their batch index. Any error other than a data validity
// rejection is returned as fatal together with the rows committed so far
func (l *Loader) Flush(ctx context.Context, s domain.Schema, table string, batch domain.Batch) (committed int, failed []domain.InsertResult, err error) {
	if len(batch) == 0 {
		return 0, nil, nil
	}
	ctx, cancel := guardrails.ForFlush(ctx, l.Timeouts)
	defer cancel()

	n, err := l.insert(ctx, s, table, batch)
	if err == nil {
		return int(n), nil, nil
	}
	if !perr.IsDataValidity(err) {
		return 0, nil, err
	}

	for i, row := range batch {
		n, rerr := l.insert(ctx, s, table, batch[i:i+1])
		switch {
		case rerr == nil:
			committed += int(n)
		case perr.IsDataValidity(rerr):
			failed = append(failed, domain.InsertResult{
				Status:   domain.Failed,
				Reason:   reason(rerr),
				SQLState: perr.SQLState(rerr),
				Index:    i,
				Row:      row,
			})
		default:
			return committed, failed, rerr
		}
	}
	return committed, failed, nil
}

// insert runs one transaction, retrying transient lock conflicts with jittered backoff
func (l *Loader) insert(ctx context.Context, s domain.Schema, table string, rows domain.Batch) (int64, error) {
	attempts := max(l.MaxRetries, 1)
	base := l.RetryBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}

	var last error
	for attempt := range attempts {
		var n int64
		err := repokit.Bound(ctx, l.DB, l.Tables, func(r domain.TableRepo) error {
			var e error
			n, e = r.InsertRows(ctx, s, table, rows)
			return e
		})
		if err == nil {
			return n, nil
		}
		last = err
		if !perr.IsRetryable(err) || attempt == attempts-1 {
			break
		}
		d := min(base<<attempt, 10*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		if se := sleepCtx(ctx, j); se != nil {
			return 0, last
		}
	}
	return 0, last
}

// reason prefers the server message over the wrapped error chain
func reason(err error) string {
	if pgErr, ok := perr.ExtractPgError(err); ok {
		if pgErr.Detail != "" {
			return pgErr.Message + ": " + pgErr.Detail
		}
		return pgErr.Message
	}
	return perr.Root(err).Error()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
