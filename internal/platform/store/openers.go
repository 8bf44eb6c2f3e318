package store

import (
	"context"
	"fmt"
	"time"

	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/logger"
	chx "redditimport/internal/platform/store/ch"
	"redditimport/internal/platform/store/pg"
)

// postgres is often still starting when an import is launched next to it
const (
	pgConnectAttempts = 20
	pgPingTimeout     = 3 * time.Second
	pgBackoffFirst    = 150 * time.Millisecond
	pgBackoffMax      = 2 * time.Second
)

var sleep = time.Sleep

func openPG(ctx context.Context, cfg Config, log logger.Logger) (TxRunner, error) {
	pcfg := pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
		SlowMs:   cfg.PG.SlowQueryMs,
	}
	if cfg.PG.LogSQL {
		pcfg.Tracer = pg.Tracer(log)
	}
	db, err := pg.Open(ctx, pcfg)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "postgres config")
	}

	attempts := orDefault(cfg.PG.ConnectRetries, pgConnectAttempts)
	timeout := orDefault(cfg.PG.PingTimeout, pgPingTimeout)
	wait := pgBackoffFirst

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = db.Pool.Ping(pctx)
		cancel()
		switch {
		case lastErr == nil:
			return newPGAdapter(db), nil
		case ctx.Err() != nil:
			db.Close()
			return nil, ctx.Err()
		}
		log.Debug().Int("attempt", attempt).Err(lastErr).Dur("retry_in", wait).Msg("postgres not ready")
		sleep(wait)
		wait = min(2*wait, pgBackoffMax)
	}
	db.Close()
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeConnectivity, "postgres unreachable after %d attempts", attempts)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, AppName: cfg.AppName, Role: cfg.CH.Role})
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	return newCHAdapter(c), nil
}

// orDefault returns v, or def when v is not positive
func orDefault[T int | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}
