// Package pg opens the pgx pool the importer loads through
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is what the pool needs from store.PGConfig
type Config struct {
	URL      string
	MaxConns int32
	AppName  string

	// Tracer receives every statement; nil disables tracing
	Tracer QueryTracer
	SlowMs int
}

// PG holds the pool plus tracing knobs for the sql adapter
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds a lazily connecting pool. Sessions run in UTC
// so created_utc round trips unchanged. tune runs last and may override anything
func Open(ctx context.Context, cfg Config, tune ...func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	params := pcfg.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	if cfg.AppName != "" {
		params["application_name"] = cfg.AppName
	}
	for _, fn := range tune {
		fn(pcfg)
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: cfg.Tracer, SlowMs: cfg.SlowMs}, nil
}

// Close is safe on a nil or empty PG
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
