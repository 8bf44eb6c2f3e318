package domain

import (
	"context"
	"io"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, root string) (Summary, error)
}

// StatusPort exposes live progress for the status endpoint
type StatusPort interface {
	Snapshot() Status
}

// Status is a point-in-time view of a run
type Status struct {
	RunID   string       `json:"run_id,omitempty"`
	Running bool         `json:"running"`
	Root    string       `json:"root,omitempty"`
	Active  []FileReport `json:"active"`
	Recent  []FileReport `json:"recent"`
	Summary Summary      `json:"summary"`
}

// TableRepo provisions destination tables and writes rows; bound to one Queryer
type TableRepo interface {
	EnsureTable(ctx context.Context, s Schema, table string) error
	DisableIndexes(ctx context.Context, table string) error
	EnableIndexes(ctx context.Context, table string) error
	InsertRows(ctx context.Context, s Schema, table string, rows []Row) (int64, error)
}

// LedgerRepo records file attempts in the import_files table
type LedgerRepo interface {
	EnsureLedger(ctx context.Context) error
	StartFile(ctx context.Context, runID string, f SourceFile) error
	FinishFile(ctx context.Context, runID string, r FileReport) error
}

// StatsSink receives one report per finished file; implementations must not block the import
type StatsSink interface {
	Record(ctx context.Context, runID string, r FileReport) error
}

// Parser turns one archive line into a row
type Parser interface {
	Parse(k Kind, line []byte) (Row, error)
}

// Tracker decides whether a file was already imported
type Tracker interface {
	IsDone(f SourceFile) bool
	MarkDone(f SourceFile) error
}

// FailureLog collects rejected rows of one file
type FailureLog interface {
	Add(fi FailedInsert)
	Len() int
	Flush() error
}

// LineSource yields archive lines; io.EOF ends a clean scan
type LineSource interface {
	Next() ([]byte, error)
	Stats() (lines int, bytes int64)
}

// SQLExecutor runs a whole SQL dump read from r
type SQLExecutor interface {
	Exec(ctx context.Context, r io.Reader) error
}
