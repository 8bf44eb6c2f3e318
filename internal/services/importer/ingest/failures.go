package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"redditimport/internal/services/importer/domain"
)

// FailureFile buffers rejected rows and appends them as JSON lines to path on Flush
type FailureFile struct {
	path    string
	mu      sync.Mutex
	pending []domain.FailedInsert
	total   int
}

// NewFailureFile returns a log appending to path; nothing is created until a row fails
func NewFailureFile(path string) *FailureFile { return &FailureFile{path: path} }

// Add queues one failure
func (f *FailureFile) Add(fi domain.FailedInsert) {
	f.mu.Lock()
	f.pending = append(f.pending, fi)
	f.total++
	f.mu.Unlock()
}

// Len is the number of failures added over the log's lifetime
func (f *FailureFile) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// Path is the destination file
func (f *FailureFile) Path() string { return f.path }

// logFile is the append target of Flush
type logFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Sync() error
	Close() error
}

var openLog = func(path string) (logFile, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Flush appends pending entries and fsyncs; a no-op when nothing is pending.
// Entries written before a failed write are not written again, and a torn
// trailing line is cut off
func (f *FailureFile) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	ends := make([]int, 0, len(f.pending))
	for _, fi := range f.pending {
		if err := enc.Encode(fi); err != nil {
			fi.Reason = fmt.Sprintf("%s (fields dropped: %v)", fi.Reason, err)
			fi.Fields = nil
			if err := enc.Encode(fi); err != nil {
				return err
			}
		}
		ends = append(ends, buf.Len())
	}

	out, err := openLog(f.path)
	if err != nil {
		return err
	}
	info, err := out.Stat()
	if err != nil {
		_ = out.Close()
		return err
	}
	n, werr := out.Write(buf.Bytes())
	if werr != nil {
		done := sort.SearchInts(ends, n+1)
		kept := 0
		if done > 0 {
			kept = ends[done-1]
		}
		if kept < n {
			_ = out.Truncate(info.Size() + int64(kept))
		}
		f.pending = f.pending[done:]
		_ = out.Close()
		return werr
	}
	f.pending = f.pending[:0]
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
