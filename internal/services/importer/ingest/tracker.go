package ingest

import (
	"os"
	"time"

	"redditimport/internal/services/importer/domain"
)

// FileTracker keeps completion markers next to the source files
type FileTracker struct {
	now func() time.Time
}

// NewFileTracker returns a marker-file tracker
func NewFileTracker() *FileTracker { return &FileTracker{now: time.Now} }

// IsDone reports whether the marker exists as a regular file
func (t *FileTracker) IsDone(f domain.SourceFile) bool {
	fi, err := os.Stat(f.MarkerPath)
	return err == nil && fi.Mode().IsRegular()
}

// MarkDone writes the marker atomically so a crash never leaves a half marker
func (t *FileTracker) MarkDone(f domain.SourceFile) error {
	tmp := f.MarkerPath + ".tmp"
	body := []byte(t.now().UTC().Format(time.RFC3339) + "\n")
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.MarkerPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
