package ch

import (
	"context"
	"errors"
	"testing"

	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{URL: "http://[::1"})
	if err == nil {
		t.Fatalf("expected dsn error")
	}
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("code = %v, want invalid_argument", perr.CodeOf(err))
	}
}

func TestOpen_DialFailureIsConnectivity(t *testing.T) {
	testkit.Seam(t, &openConn, func(*clickhouse.Options) (driver.Conn, error) {
		return nil, errors.New("refused")
	})
	_, err := Open(context.Background(), Config{URL: "clickhouse://127.0.0.1:9000/default", Role: "import"})
	if !perr.IsCode(err, perr.ErrorCodeConnectivity) {
		t.Fatalf("code = %v, want connectivity", perr.CodeOf(err))
	}
}

func TestOpen_PassesClientInfo(t *testing.T) {
	var seen *clickhouse.Options
	testkit.Seam(t, &openConn, func(o *clickhouse.Options) (driver.Conn, error) {
		seen = o
		return nil, errors.New("stop here")
	})
	_, _ = Open(context.Background(), Config{URL: "clickhouse://127.0.0.1:9000/reddit", AppName: "redditimport", Role: "import"})
	if seen == nil {
		t.Fatalf("openConn not called")
	}
	if seen.Auth.Database != "reddit" {
		t.Fatalf("database = %q", seen.Auth.Database)
	}
	p := seen.ClientInfo.Products
	if len(p) == 0 || p[0].Name != "redditimport" || p[1].Version != "import" {
		t.Fatalf("client info = %+v", p)
	}
}

func TestInsert_ValidatesTableBeforeDialing(t *testing.T) {
	t.Parallel()

	var c *CH
	if err := c.Insert(context.Background(), "bad table; drop", [][]any{{1}}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if err := c.Insert(context.Background(), "reddit.import_stats", nil); err != nil {
		t.Fatalf("empty insert should be a no-op, got %v", err)
	}
	if err := c.Insert(context.Background(), "import_stats", [][]any{{1}}); err == nil {
		t.Fatalf("nil client should error")
	}
}

func TestNilClientSafe(t *testing.T) {
	t.Parallel()

	var c *CH
	if err := c.Close(); err != nil {
		t.Fatalf("Close on nil = %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("Ping on nil should error")
	}
	if _, err := c.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("Query on nil should error")
	}
	if err := c.Exec(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("Exec on nil should error")
	}
}

func TestBuildClientInfoDefaults(t *testing.T) {
	t.Parallel()

	info := BuildClientInfo(" fetch ", "")
	if len(info.Products) != 5 {
		t.Fatalf("products = %+v", info.Products)
	}
	if p := info.Products[0]; p.Name != "redditimport" || p.Version != "dev" {
		t.Fatalf("app product = %+v", p)
	}
	if p := info.Products[1]; p.Name != "role" || p.Version != "fetch" {
		t.Fatalf("role product = %+v", p)
	}
}
