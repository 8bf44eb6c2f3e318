// Package domain holds the core data structures of the archive importer
package domain

import (
	"path/filepath"
	"time"

	"redditimport/internal/adapters/ingest/pushshift"
)

// Kind re-exports the archive content kind
type Kind = pushshift.Kind

// Classified re-exports the classifier outcome
type Classified = pushshift.Classified

const (
	// MarkerSuffix is appended to a source path to mark it fully imported
	MarkerSuffix = ".done"
	// FailureLogSuffix is appended to a source path for rows the database rejected
	FailureLogSuffix = "_failed_inserts.txt"
	// DefaultBatchSize is the number of rows per multi-row insert
	DefaultBatchSize = 1000
)

// SourceFile is one recognized file found during the walk
type SourceFile struct {
	Path           string
	Name           string
	Class          Classified
	MarkerPath     string
	FailureLogPath string
}

// NewSourceFile derives the sidecar paths for path
func NewSourceFile(path string, c Classified) SourceFile {
	return SourceFile{
		Path:           path,
		Name:           filepath.Base(path),
		Class:          c,
		MarkerPath:     path + MarkerSuffix,
		FailureLogPath: path + FailureLogSuffix,
	}
}

// Table is the destination table of the file
func (f SourceFile) Table() string { return f.Class.Table() }

// Row is one parsed record ready for insertion
type Row interface {
	Kind() Kind
	// Args returns the values in Schema column order
	Args() []any
	// Fields returns column name to value, used by the failure log
	Fields() map[string]any
}

// Batch is an ordered run of rows flushed together
type Batch []Row

// InsertStatus is the outcome of one row attempt
type InsertStatus uint8

const (
	// Committed rows are durable in the destination table
	Committed InsertStatus = iota + 1
	// Failed rows were rejected for their values and went to the failure log
	Failed
)

// String names the status
func (s InsertStatus) String() string {
	switch s {
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// InsertResult records the outcome of a single row insert
type InsertResult struct {
	Status   InsertStatus
	Reason   string
	SQLState string
	// Index is the position of Row in its batch
	Index int
	Row   Row
}

// FailedInsert is one line of the failure log
type FailedInsert struct {
	Table    string         `json:"table"`
	Line     int            `json:"line,omitempty"`
	Reason   string         `json:"reason"`
	SQLState string         `json:"sqlstate,omitempty"`
	Fields   map[string]any `json:"fields"`
}

// FileStatus is the final state of one file in a run
type FileStatus string

const (
	// StatusOK means every row was committed or logged and the marker was written
	StatusOK FileStatus = "ok"
	// StatusSkipped means the marker existed and resume was requested
	StatusSkipped FileStatus = "skipped"
	// StatusPartial means the archive ended early; committed rows stay and no marker is written
	StatusPartial FileStatus = "partial"
	// StatusError means the file aborted on an infrastructure error
	StatusError FileStatus = "error"
)

// FileReport describes what happened to one file
type FileReport struct {
	Path      string        `json:"path"`
	Table     string        `json:"table"`
	Format    string        `json:"format"`
	Status    FileStatus    `json:"status"`
	Lines     int           `json:"lines"`
	Parsed    int           `json:"parsed"`
	Malformed int           `json:"malformed"`
	Committed int           `json:"committed"`
	Failed    int           `json:"failed"`
	Batches   int           `json:"batches"`
	Bytes     int64         `json:"bytes"`
	Warning   string        `json:"warning,omitempty"`
	Err       string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Summary aggregates the reports of one run
type Summary struct {
	RunID     string        `json:"run_id"`
	Files     int           `json:"files"`
	OK        int           `json:"ok"`
	Skipped   int           `json:"skipped"`
	Partial   int           `json:"partial"`
	Errors    int           `json:"errors"`
	Committed int64         `json:"committed"`
	Failed    int64         `json:"failed"`
	Malformed int64         `json:"malformed"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Add folds r into s
func (s *Summary) Add(r FileReport) {
	s.Files++
	switch r.Status {
	case StatusOK:
		s.OK++
	case StatusSkipped:
		s.Skipped++
	case StatusPartial:
		s.Partial++
	case StatusError:
		s.Errors++
	}
	s.Committed += int64(r.Committed)
	s.Failed += int64(r.Failed)
	s.Malformed += int64(r.Malformed)
}
