// Package guardrails bounds how long and where an import may run:
// per-file and per-flush time budgets, and a cross-process file lease
package guardrails

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timeouts are the optional budgets for one file. Zero disables a level
type Timeouts struct {
	// File covers decompress, parse and load of one archive
	File time.Duration
	// Flush covers one batch insert including its per-row fallback
	Flush time.Duration
}

// ErrBudget is the context cause when a file or flush budget runs out
var ErrBudget = errors.New("import budget exceeded")

// WithFile bounds ctx by the file budget
func WithFile(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return bound(parent, "file", t.File)
}

// ForFlush bounds ctx by the flush budget
func ForFlush(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return bound(parent, "flush", t.Flush)
}

// bound never extends a parent deadline; context.Cause reports which budget expired
func bound(parent context.Context, level string, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeoutCause(parent, d, fmt.Errorf("%s budget of %s: %w", level, d, ErrBudget))
}
