package repokit

import (
	"context"
	"fmt"
	"regexp"
)

// BeginHook runs first thing inside every transaction
type BeginHook func(ctx context.Context, q Queryer) error

var gucName = regexp.MustCompile(`^[a-z_][a-z0-9_.]*$`)

// SetLocal sets a server setting for the current transaction only, e.g.
// synchronous_commit=off for bulk loads. The value travels as a bind parameter
func SetLocal(name, value string) BeginHook {
	if !gucName.MatchString(name) {
		panic(fmt.Sprintf("repokit: invalid setting name %q", name))
	}
	return func(ctx context.Context, q Queryer) error {
		if _, err := q.Exec(ctx, "SELECT set_config($1, $2, true)", name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		return nil
	}
}

// WithBeginHooks returns a runner whose transactions start with hooks.
// Statements outside a transaction go straight to inner
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hooked{TxRunner: inner, hooks: hooks}
}

type hooked struct {
	TxRunner
	hooks []BeginHook
}

func (h hooked) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// SyncCommit commits one transaction that writes WAL with synchronous_commit on.
// When it returns, every earlier asynchronous commit of the cluster is durable
func SyncCommit(ctx context.Context, tx TxRunner) error {
	return tx.Tx(ctx, func(q Queryer) error {
		if _, err := q.Exec(ctx, "SELECT set_config('synchronous_commit', 'on', true)"); err != nil {
			return fmt.Errorf("sync commit: %w", err)
		}
		// a transaction without an xid commits without waiting for the flush
		if _, err := q.Exec(ctx, "SELECT txid_current()"); err != nil {
			return fmt.Errorf("sync commit: %w", err)
		}
		return nil
	})
}
