package repokit

import (
	"context"
	"fmt"
	"time"
)

const guardBudget = 30 * time.Second

// Guarder reports whether every configured backend answers
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard checks the store before the importer touches any file and panics
// when a backend is down. Without a deadline on ctx it allows guardBudget
func MustGuard(ctx context.Context, st Guarder) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, guardBudget)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("store guard: %w", err))
	}
}
