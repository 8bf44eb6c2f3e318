package service

import (
	"bytes"
	"context"
	"io"
	"sync"

	"redditimport/internal/adapters/decompress"
	"redditimport/internal/modkit/repokit"
	"redditimport/internal/platform/store"
	"redditimport/internal/services/importer/domain"
	"redditimport/internal/services/importer/ingest"
)

// fakeDB hands every transaction the same Queryer, counts them and records statements
type fakeDB struct {
	mu    sync.Mutex
	txs   int
	stmts []string
}

func (d *fakeDB) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stmts = append(d.stmts, sql)
	return nil, nil
}

func (d *fakeDB) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (d *fakeDB) QueryRow(context.Context, string, ...any) store.Row        { return nil }

func (d *fakeDB) executed(sql string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.stmts {
		if s == sql {
			return true
		}
	}
	return false
}

func (d *fakeDB) Tx(ctx context.Context, fn func(store.RowQuerier) error) error {
	d.mu.Lock()
	d.txs++
	d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(d)
}

// fakeTables keeps committed rows per table; a failing insert commits nothing
type fakeTables struct {
	mu        sync.Mutex
	rows      map[string][]domain.Row
	ensured   map[string]int
	disabled  map[string]int
	enabled   map[string]int
	inserts   int
	reject    func(domain.Row) error
	// failAfter successful inserts, failErr is returned; 0 disables
	failAfter int
	failErr   error
	// transient errors are returned by the next inserts before anything else
	transient []error
}

func newFakeTables() *fakeTables {
	return &fakeTables{
		rows:     map[string][]domain.Row{},
		ensured:  map[string]int{},
		disabled: map[string]int{},
		enabled:  map[string]int{},
	}
}

func (f *fakeTables) binder() repokit.Binder[domain.TableRepo] {
	return repokit.BindFunc[domain.TableRepo](func(repokit.Queryer) domain.TableRepo { return f })
}

func (f *fakeTables) EnsureTable(_ context.Context, _ domain.Schema, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured[table]++
	return nil
}

func (f *fakeTables) DisableIndexes(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled[table]++
	return nil
}

func (f *fakeTables) EnableIndexes(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled[table]++
	return nil
}

func (f *fakeTables) InsertRows(_ context.Context, _ domain.Schema, table string, rows []domain.Row) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.transient) > 0 {
		err := f.transient[0]
		f.transient = f.transient[1:]
		return 0, err
	}
	if f.reject != nil {
		for _, r := range rows {
			if err := f.reject(r); err != nil {
				return 0, err
			}
		}
	}
	if f.failErr != nil && f.failAfter > 0 && f.inserts >= f.failAfter {
		return 0, f.failErr
	}
	f.inserts++
	f.rows[table] = append(f.rows[table], rows...)
	return int64(len(rows)), nil
}

func (f *fakeTables) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[table])
}

// fakeExec drains the dump and keeps it
type fakeExec struct {
	got bytes.Buffer
	err error
}

func (e *fakeExec) Exec(_ context.Context, r io.Reader) error {
	if _, err := io.Copy(&e.got, r); err != nil {
		return err
	}
	return e.err
}

func newTestService(tables *fakeTables, exec domain.SQLExecutor, cfg Config) *Service {
	set, err := decompress.NewSet(decompress.Config{Mode: decompress.ModeLibrary})
	if err != nil {
		panic(err)
	}
	return New(
		&fakeDB{},
		tables.binder(),
		ingest.NewParser(),
		ingest.NewFileTracker(),
		set,
		exec,
		func(path string) domain.FailureLog { return ingest.NewFailureFile(path) },
		cfg,
	)
}
