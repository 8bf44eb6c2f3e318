package repo

import (
	"context"
	"strings"

	"redditimport/internal/platform/store"
)

type fakeTag struct{ n int64 }

func (t fakeTag) String() string      { return "INSERT 0" }
func (t fakeTag) RowsAffected() int64 { return t.n }

type call struct {
	sql  string
	args []any
}

// recQ records every statement; affected reports RowsAffected, failOn errors when sql contains it
type recQ struct {
	calls    []call
	affected int64
	failOn   string
	err      error
	row      store.Row
	rows     store.Rows
}

func (q *recQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	q.calls = append(q.calls, call{sql: sql, args: args})
	if q.failOn != "" && strings.Contains(sql, q.failOn) {
		return nil, q.err
	}
	return fakeTag{n: q.affected}, nil
}

func (q *recQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	q.calls = append(q.calls, call{sql: sql, args: args})
	return q.rows, q.err
}

func (q *recQ) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	q.calls = append(q.calls, call{sql: sql, args: args})
	return q.row
}

func (q *recQ) sqls() []string {
	out := make([]string, len(q.calls))
	for i, c := range q.calls {
		out[i] = c.sql
	}
	return out
}

type scalarRow struct{ v int64 }

func (r scalarRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.v
	return nil
}

type fakeCH struct {
	execs []string
	table string
	rows  [][]any
	err   error
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return f.err
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table = table
	f.rows = append(f.rows, rows...)
	return f.err
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, f.err }
func (f *fakeCH) Close() error                                              { return nil }
