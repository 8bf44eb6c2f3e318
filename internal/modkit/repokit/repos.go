// Package repokit binds repositories to a transaction and shapes the
// transactions the importer opens
package repokit

import (
	"context"

	"redditimport/internal/platform/store"
)

type (
	// Queryer is the read and write surface a bound repo sees
	Queryer = store.RowQuerier
	// TxRunner opens transactions
	TxRunner = store.TxRunner
	// Clickhouse is the columnar seam stats go through
	Clickhouse = store.Clickhouse

	// Rows is a query result set
	Rows = store.Rows
	// Row is a single result row
	Row = store.Row
	// CommandTag reports what a write touched
	CommandTag = store.CommandTag
)

// Binder makes a repo that runs its statements on q
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// Bound runs fn in one transaction with the repo bound to it.
// A nil Queryer from the runner is a wiring bug and panics
func Bound[T any](ctx context.Context, tx TxRunner, b Binder[T], fn func(repo T) error) error {
	return tx.Tx(ctx, func(q Queryer) error {
		if q == nil {
			panic("repokit: transaction yielded a nil Queryer")
		}
		return fn(b.Bind(q))
	})
}
