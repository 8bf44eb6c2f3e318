// Package repo provides postgres and clickhouse access for the importer
package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"redditimport/internal/modkit/repokit"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/services/importer/domain"
)

// maxParams is the Postgres bind parameter ceiling per statement
const maxParams = 65535

type (
	// PG is a Postgres binder for domain.TableRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.TableRepo
func NewPG() repokit.Binder[domain.TableRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.TableRepo { return &queries{q: q} }

func ident(name string) string { return pgx.Identifier{name}.Sanitize() }

// IndexName is the name of the secondary index on column of table
func IndexName(table, column string) string { return table + "_" + column + "_idx" }

// EnsureTable creates the table and its secondary indexes when absent (idempotent)
func (r *queries) EnsureTable(ctx context.Context, s domain.Schema, table string) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(ident(table))
	b.WriteString(" (\n\tid BIGSERIAL PRIMARY KEY")
	for _, c := range s.Columns {
		b.WriteString(",\n\t")
		b.WriteString(ident(c.Name))
		b.WriteByte(' ')
		b.WriteString(c.Type)
	}
	b.WriteString("\n)")
	if _, err := r.q.Exec(ctx, b.String()); err != nil {
		return perr.WithOp(err, "ensure_table")
	}
	return r.EnableIndexes(ctx, table)
}

// DisableIndexes drops the secondary indexes ahead of a bulk load
func (r *queries) DisableIndexes(ctx context.Context, table string) error {
	for _, col := range domain.IndexedColumns {
		if _, err := r.q.Exec(ctx, "DROP INDEX IF EXISTS "+ident(IndexName(table, col))); err != nil {
			return perr.WithOp(err, "disable_indexes")
		}
	}
	return nil
}

// EnableIndexes (re)creates the secondary indexes
func (r *queries) EnableIndexes(ctx context.Context, table string) error {
	for _, col := range domain.IndexedColumns {
		sql := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			ident(IndexName(table, col)), ident(table), ident(col))
		if _, err := r.q.Exec(ctx, sql); err != nil {
			return perr.WithOp(err, "enable_indexes")
		}
	}
	return nil
}

// InsertRows writes rows with one multi-row INSERT and returns the affected count
func (r *queries) InsertRows(ctx context.Context, s domain.Schema, table string, rows []domain.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql, err := InsertSQL(s, table, len(rows))
	if err != nil {
		return 0, err
	}
	args := make([]any, 0, len(rows)*len(s.Columns))
	for _, row := range rows {
		args = append(args, row.Args()...)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, perr.WithOp(err, "insert_rows")
	}
	return tag.RowsAffected(), nil
}

// InsertSQL renders INSERT INTO table (cols) VALUES ($1,...),(...) for n rows
func InsertSQL(s domain.Schema, table string, n int) (string, error) {
	width := len(s.Columns)
	if n <= 0 || width == 0 {
		return "", perr.InvalidArgf("insert into %s: %d rows of %d columns", table, n, width)
	}
	if n*width > maxParams {
		return "", perr.InvalidArgf("insert into %s: %d rows x %d columns exceeds %d parameters", table, n, width, maxParams)
	}
	var b strings.Builder
	b.Grow(64 + n*width*6)
	b.WriteString("INSERT INTO ")
	b.WriteString(ident(table))
	b.WriteString(" (")
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ident(c.Name))
	}
	b.WriteString(") VALUES ")
	p := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := 0; j < width; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(p))
			p++
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

// MaxBatchRows is the largest batch a single INSERT can carry for s
func MaxBatchRows(s domain.Schema) int { return maxParams / len(s.Columns) }
