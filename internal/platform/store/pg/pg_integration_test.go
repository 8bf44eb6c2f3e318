//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"redditimport/internal/platform/testkit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_And_BasicQueries_Integration(t *testing.T) {
	dsn := testkit.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	p, err := Open(ctx, Config{URL: dsn, AppName: "redditimport-pg-integration"}, func(pc *pgxpool.Config) {
		pc.MinConns = 1
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)

	// keep the TEMP table on a single session
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `create temporary table t (message_id varchar(20), subreddit varchar(255))`); err != nil {
		t.Fatalf("create temp table failed: %v", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`insert into t (message_id, subreddit) values ($1,$2)`, "t1_a", "golang")
	br := conn.SendBatch(ctx, batch)
	if _, err := br.Exec(); err != nil {
		_ = br.Close()
		t.Fatalf("insert failed: %v", err)
	}
	if err := br.Close(); err != nil {
		t.Fatalf("batch close: %v", err)
	}

	type row struct {
		MessageID string
		Subreddit string
	}
	rows, err := conn.Query(ctx, `select message_id, subreddit from t`)
	if err != nil {
		t.Fatalf("query rows: %v", err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0].MessageID != "t1_a" || got[0].Subreddit != "golang" {
		t.Fatalf("unexpected rows: %#v", got)
	}

	var gotApp string
	if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&gotApp); err != nil {
		t.Fatalf("check app name: %v", err)
	}
	if gotApp != "redditimport-pg-integration" {
		t.Fatalf("application_name mismatch: got %q", gotApp)
	}
}
