package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"redditimport/internal/platform/store/ch"
)

type fakeCH struct {
	pingErr  error
	closed   bool
	execSQL  string
	table    string
	inserted [][]any
	rows     *fakeCHRows
	queryErr error
}

func (f *fakeCH) Ping(context.Context) error { return f.pingErr }
func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execSQL = sql
	return nil
}
func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.inserted = table, rows
	return nil
}
func (f *fakeCH) Query(context.Context, string, ...any) (ch.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}
func (f *fakeCH) Close() error { f.closed = true; return nil }

type fakeCHRows struct {
	data   []int64
	i      int
	closed bool
}

func (r *fakeCHRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeCHRows) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.data[r.i-1]
	return nil
}
func (r *fakeCHRows) Err() error        { return nil }
func (r *fakeCHRows) Close() error      { r.closed = true; return nil }
func (r *fakeCHRows) Columns() []string { return []string{"committed"} }

func TestCHAdapter_DelegatesWrites(t *testing.T) {
	t.Parallel()

	f := &fakeCH{}
	a := newCHAdapter(f)

	if err := a.Exec(context.Background(), "CREATE TABLE IF NOT EXISTS import_stats (x UInt8) ENGINE = Memory"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if f.execSQL == "" {
		t.Fatalf("Exec not delegated")
	}

	rows := [][]any{{"RC_2020-10.zst", uint64(10)}}
	if err := a.Insert(context.Background(), "import_stats", rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if f.table != "import_stats" || !reflect.DeepEqual(f.inserted, rows) {
		t.Fatalf("Insert not delegated: %s %v", f.table, f.inserted)
	}

	empty := &fakeCH{}
	if err := newCHAdapter(empty).Insert(context.Background(), "import_stats", nil); err != nil || empty.table != "" {
		t.Fatalf("empty insert reached clickhouse: table=%q err=%v", empty.table, err)
	}
}

func TestCHAdapter_QueryWrapsRows(t *testing.T) {
	t.Parallel()

	fr := &fakeCHRows{data: []int64{3, 4}}
	a := newCHAdapter(&fakeCH{rows: fr})

	rs, err := a.Query(context.Background(), "SELECT committed FROM import_stats")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var sum int64
	for rs.Next() {
		var n int64
		if err := rs.Scan(&n); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		sum += n
	}
	rs.Close()
	if sum != 7 || !fr.closed || rs.Columns()[0] != "committed" {
		t.Fatalf("sum=%d closed=%v", sum, fr.closed)
	}

	if _, err := newCHAdapter(&fakeCH{queryErr: errors.New("x")}).Query(context.Background(), "q"); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestCHAdapter_Ping(t *testing.T) {
	t.Parallel()

	if err := newCHAdapter(&fakeCH{}).(Pinger).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	var nilAdapter *clickhouseAdapter
	if err := nilAdapter.Ping(context.Background()); err == nil {
		t.Fatalf("nil adapter should error")
	}
}
