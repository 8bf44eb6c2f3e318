package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"redditimport/internal/platform/store"
	"redditimport/internal/platform/testkit"
)

type tag int64

func (t tag) RowsAffected() int64 { return int64(t) }
func (t tag) String() string      { return "" }

// recDB records statements and runs Tx on itself
type recDB struct {
	stmts  []string
	failOn string
	txs    int
}

func (d *recDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	s := sql
	for _, a := range args {
		if v, ok := a.(string); ok {
			s += " " + v
		}
	}
	d.stmts = append(d.stmts, s)
	if d.failOn != "" && strings.Contains(s, d.failOn) {
		return tag(0), errors.New("permission denied")
	}
	return tag(1), nil
}

func (d *recDB) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (d *recDB) QueryRow(context.Context, string, ...any) store.Row        { return nil }

func (d *recDB) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	d.txs++
	return fn(d)
}

type tables struct{ q Queryer }

func (r tables) create(ctx context.Context, name string) error {
	_, err := r.q.Exec(ctx, "CREATE TABLE IF NOT EXISTS "+name)
	return err
}

func TestBoundRunsRepoInsideTx(t *testing.T) {
	t.Parallel()

	db := &recDB{}
	b := BindFunc[tables](func(q Queryer) tables { return tables{q: q} })

	err := Bound(context.Background(), db, b, func(r tables) error { return r.create(context.Background(), "sub_2021_01") })
	if err != nil {
		t.Fatal(err)
	}
	if db.txs != 1 || len(db.stmts) != 1 || db.stmts[0] != "CREATE TABLE IF NOT EXISTS sub_2021_01" {
		t.Fatalf("txs=%d stmts=%v", db.txs, db.stmts)
	}
}

type nilTx struct{ *recDB }

func (nilTx) Tx(_ context.Context, fn func(store.RowQuerier) error) error { return fn(nil) }

func TestBoundPanicsOnNilQueryer(t *testing.T) {
	t.Parallel()

	b := BindFunc[tables](func(q Queryer) tables { return tables{q: q} })
	testkit.MustPanic(t, func() {
		_ = Bound(context.Background(), nilTx{&recDB{}}, b, func(tables) error { return nil })
	})
}

func TestBeginHooks(t *testing.T) {
	t.Parallel()

	db := &recDB{}
	if WithBeginHooks(db) != TxRunner(db) {
		t.Fatal("no hooks should return the inner runner")
	}

	runner := WithBeginHooks(db, SetLocal("synchronous_commit", "off"), SetLocal("statement_timeout", "0"))
	err := runner.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT INTO sub_2021_01")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"SELECT set_config($1, $2, true) synchronous_commit off",
		"SELECT set_config($1, $2, true) statement_timeout 0",
		"INSERT INTO sub_2021_01",
	}
	if strings.Join(db.stmts, "|") != strings.Join(want, "|") {
		t.Fatalf("stmts = %v", db.stmts)
	}

	// statements outside a tx skip the hooks
	if _, err := runner.Exec(context.Background(), "SELECT 1"); err != nil || len(db.stmts) != 4 {
		t.Fatalf("direct exec: %v %v", err, db.stmts)
	}
}

func TestBeginHookFailureStopsTx(t *testing.T) {
	t.Parallel()

	db := &recDB{failOn: "synchronous_commit"}
	ran := false
	err := WithBeginHooks(db, SetLocal("synchronous_commit", "off")).Tx(context.Background(), func(Queryer) error {
		ran = true
		return nil
	})
	if err == nil || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
	testkit.MustContain(t, err.Error(), "set synchronous_commit")
}

func TestSyncCommitOverridesAsyncHook(t *testing.T) {
	t.Parallel()

	db := &recDB{}
	runner := WithBeginHooks(db, SetLocal("synchronous_commit", "off"))
	if err := SyncCommit(context.Background(), runner); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"SELECT set_config($1, $2, true) synchronous_commit off",
		"SELECT set_config('synchronous_commit', 'on', true)",
		"SELECT txid_current()",
	}
	if db.txs != 1 || strings.Join(db.stmts, "|") != strings.Join(want, "|") {
		t.Fatalf("txs=%d stmts=%v", db.txs, db.stmts)
	}

	failing := &recDB{failOn: "txid_current"}
	err := SyncCommit(context.Background(), failing)
	if err == nil {
		t.Fatal("want error from the xid statement")
	}
	testkit.MustContain(t, err.Error(), "sync commit")
}

func TestSetLocalRejectsBadName(t *testing.T) {
	t.Parallel()

	testkit.MustPanic(t, func() { SetLocal("work_mem; DROP TABLE x", "1") })
}

type guard struct{ err error }

func (g guard) Guard(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return g.err
}

func TestMustGuard(t *testing.T) {
	t.Parallel()

	MustGuard(context.Background(), guard{})
	v := testkit.MustPanic(t, func() { MustGuard(context.Background(), guard{err: errors.New("pg: refused")}) })
	testkit.MustContain(t, v.(error).Error(), "store guard: pg: refused")
}
