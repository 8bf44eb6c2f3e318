// Package store opens the importer's backends: the target postgres database
// and the optional clickhouse stats sink
package store

import (
	"context"
	"errors"
	"fmt"

	"redditimport/internal/platform/logger"
)

// Store holds whichever backends Open enabled. The zero value has none
type Store struct {
	Log logger.Logger

	// PG is nil when postgres is disabled
	PG TxRunner
	// CH is nil when clickhouse is disabled
	CH Clickhouse
}

type (
	// Row is a single result row
	Row interface {
		Scan(dest ...any) error
	}

	// Rows is a result set; callers must Close it
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close()
		Columns() []string
	}

	// CommandTag reports what a statement did
	CommandTag interface {
		String() string
		RowsAffected() int64
	}

	// RowQuerier is the sql surface shared by the pool and a transaction
	RowQuerier interface {
		Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (Rows, error)
		QueryRow(ctx context.Context, sql string, args ...any) Row
	}

	// TxRunner runs fn in a transaction; an error from fn rolls back and is returned as is
	TxRunner interface {
		RowQuerier
		Tx(ctx context.Context, fn func(q RowQuerier) error) error
	}

	// Clickhouse is the columnar surface the stats sink writes through
	Clickhouse interface {
		Exec(ctx context.Context, sql string, args ...any) error
		Insert(ctx context.Context, table string, rows [][]any) error
		Query(ctx context.Context, sql string, args ...any) (Rows, error)
		Close() error
	}

	// Pinger reports readiness
	Pinger interface{ Ping(context.Context) error }
)

// Open applies opts, then connects each enabled backend in order.
// A failure closes whatever was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		db, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = db
	}
	if cfg.CH.Enabled {
		ch, err := openCH(ctx, cfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = ch
	}
	return s, nil
}

// Guard pings every backend that supports it and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for name, b := range map[string]any{"pg": s.PG, "ch": s.CH} {
		if p, ok := b.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every opened backend, clickhouse first
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
