// Package sqlexec pipes SQL dump files into the database through the psql client
package sqlexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	perr "redditimport/internal/platform/errors"
	pstrings "redditimport/internal/platform/strings"
)

const stderrTail = 2048

// psql exit statuses
const (
	exitConnection = 2
	exitScript     = 3
)

// Executor runs a SQL script read from r against the database
type Executor interface {
	Exec(ctx context.Context, r io.Reader) error
}

// Psql runs `psql --no-psqlrc -v ON_ERROR_STOP=1 -q` with the script on stdin.
// Credentials travel in the child environment so they never show up in ps output
type Psql struct {
	Bin     string
	AppName string
	env     []string
}

// NewPsql derives the PG* environment from dsn
func NewPsql(bin, dsn, appName string) (*Psql, error) {
	if bin == "" {
		bin = "psql"
	}
	env, err := Env(dsn, appName)
	if err != nil {
		return nil, err
	}
	return &Psql{Bin: bin, AppName: appName, env: env}, nil
}

// Env converts a connection string into libpq environment variables
func Env(dsn, appName string) ([]string, error) {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "parse database url")
	}
	env := []string{
		"PGHOST=" + cfg.Host,
		"PGPORT=" + strconv.Itoa(int(cfg.Port)),
		"PGUSER=" + cfg.User,
		"PGDATABASE=" + cfg.Database,
	}
	if cfg.Password != "" {
		env = append(env, "PGPASSWORD="+cfg.Password)
	}
	if cfg.TLSConfig == nil {
		env = append(env, "PGSSLMODE=disable")
	}
	if appName != "" {
		env = append(env, "PGAPPNAME="+appName)
	}
	return env, nil
}

// Args returns the fixed psql arguments
func (p *Psql) Args() []string {
	return []string{"--no-psqlrc", "-v", "ON_ERROR_STOP=1", "-q"}
}

// Exec streams r into psql and waits for it. A connection failure maps to
// Connectivity, a failed statement to DataValidity
func (p *Psql) Exec(ctx context.Context, r io.Reader) error {
	cmd := exec.CommandContext(ctx, p.Bin, p.Args()...)
	cmd.Env = append(os.Environ(), p.env...)
	cmd.Stdin = r
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	tail := pstrings.Tail(stderr.String(), stderrTail)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return perr.Wrapf(err, perr.ErrorCodeConnectivity, "run %s", p.Bin)
	}
	switch exitErr.ExitCode() {
	case exitConnection:
		return perr.Wrapf(err, perr.ErrorCodeConnectivity, "psql could not connect: %s", tail)
	case exitScript:
		return perr.Wrapf(err, perr.ErrorCodeDataValidity, "psql statement failed: %s", tail)
	default:
		return perr.Wrapf(err, perr.ErrorCodeDB, "psql exit %d: %s", exitErr.ExitCode(), tail)
	}
}

// String describes the command without credentials
func (p *Psql) String() string { return fmt.Sprintf("%s %v", p.Bin, p.Args()) }
