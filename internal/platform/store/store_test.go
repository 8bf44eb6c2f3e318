package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	perr "redditimport/internal/platform/errors"

	"github.com/rs/zerolog"
)

// fakeTxNoPing satisfies TxRunner but not Pinger
type fakeTxNoPing struct{}

func (f *fakeTxNoPing) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(f) }
func (f *fakeTxNoPing) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return nil, nil
}
func (f *fakeTxNoPing) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, nil
}
func (f *fakeTxNoPing) QueryRow(ctx context.Context, sql string, args ...any) Row { return nil }

// fakeTxWithPing satisfies TxRunner, Pinger and io.Closer-like Close
type fakeTxWithPing struct {
	fakeTxNoPing
	err    error
	closed bool
}

func (f *fakeTxWithPing) Ping(context.Context) error { return f.err }
func (f *fakeTxWithPing) Close() error               { f.closed = true; return nil }

func TestOpen_NoBackends(t *testing.T) {
	t.Parallel()

	var zl zerolog.Logger
	s, err := Open(context.Background(), Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("unexpected seams PG=%T CH=%T", s.PG, s.CH)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store returned error: %v", err)
	}
}

func TestOpen_OptionErrorStops(t *testing.T) {
	t.Parallel()

	bad := func(*Store) error { return errors.New("nope") }
	if s, err := Open(context.Background(), Config{}, bad); err == nil || s != nil {
		t.Fatalf("expected option error, got store=%v err=%v", s, err)
	}
}

func TestOpen_PGBadURL(t *testing.T) {
	t.Parallel()

	cfg := Config{PG: PGConfig{Enabled: true, URL: "://bad"}}
	s, err := Open(context.Background(), cfg)
	if err == nil || s != nil {
		t.Fatalf("expected error and nil store, got store=%v err=%v", s, err)
	}
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("code = %v, want invalid_argument", perr.CodeOf(err))
	}
}

func TestOpen_CHBadURL(t *testing.T) {
	t.Parallel()

	cfg := Config{CH: CHConfig{Enabled: true, URL: "http://[::1"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected clickhouse dsn error")
	}
}

func TestGuard(t *testing.T) {
	t.Parallel()

	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should return error")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("no seams should be healthy, got %v", err)
	}
	if err := (&Store{PG: &fakeTxNoPing{}}).Guard(context.Background()); err != nil {
		t.Fatalf("non-Pinger PG should be ignored, got %v", err)
	}
	if err := (&Store{PG: &fakeTxWithPing{}}).Guard(context.Background()); err != nil {
		t.Fatalf("healthy PG, got %v", err)
	}

	s := &Store{
		PG: &fakeTxWithPing{err: errors.New("boom")},
		CH: newCHAdapter(&fakeCH{pingErr: errors.New("down")}),
	}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if !strings.Contains(err.Error(), "pg: boom") || !strings.Contains(err.Error(), "ch: down") {
		t.Fatalf("unexpected guard error %q", err.Error())
	}
}

func TestClose_ClosesBackends(t *testing.T) {
	t.Parallel()

	pg := &fakeTxWithPing{}
	ch := &fakeCH{}
	s := &Store{PG: pg, CH: newCHAdapter(ch)}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pg.closed || !ch.closed {
		t.Fatalf("backends not closed pg=%v ch=%v", pg.closed, ch.closed)
	}
}
