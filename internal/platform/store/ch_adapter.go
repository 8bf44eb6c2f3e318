package store

import (
	"context"
	"errors"

	"redditimport/internal/platform/store/ch"
)

// chClient is what the adapter needs from *ch.CH
type chClient interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Close() error
}

// clickhouseAdapter narrows ch.Rows to store.Rows and skips empty inserts.
// Exec and Close pass straight through
type clickhouseAdapter struct{ chClient }

var _ Clickhouse = (*clickhouseAdapter)(nil)

func newCHAdapter(c chClient) Clickhouse { return &clickhouseAdapter{chClient: c} }

func (a *clickhouseAdapter) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	return a.chClient.Insert(ctx, table, rows)
}

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := a.chClient.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rs}, nil
}

func (a *clickhouseAdapter) Ping(ctx context.Context) error {
	if a == nil || a.chClient == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.chClient.Ping(ctx)
}

// chRows drops the error from ch.Rows.Close
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
