package pushshift

import (
	"bufio"
	"errors"
	"io"

	perr "redditimport/internal/platform/errors"
)

const (
	initialLineBuf = 1 << 20
	maxLineSize    = 64 << 20
)

// Source is a decompressed byte stream whose producer reports an exit status.
// Close stops a producer that is still writing
type Source interface {
	io.ReadCloser
	Wait() error
}

// LineReader yields archive lines lazily. It is single-pass: re-open the
// archive to read it again
type LineReader struct {
	src   Source
	sc    *bufio.Scanner
	err   error
	lines int
	bytes int64
}

// NewLineReader wraps src with a bounded line scanner
func NewLineReader(src Source) *LineReader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, initialLineBuf), maxLineSize)
	return &LineReader{src: src, sc: sc}
}

// Next returns the next non-empty line. The slice is only valid until the next call.
// io.EOF means the archive was read to the end and the decompressor exited cleanly;
// a PartialArchive error means lines may be missing past this point
func (r *LineReader) Next() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	for r.sc.Scan() {
		line := r.sc.Bytes()
		r.lines++
		r.bytes += int64(len(line)) + 1
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
	r.err = r.finish(r.sc.Err())
	return nil, r.err
}

func (r *LineReader) finish(scanErr error) error {
	if scanErr != nil {
		// the producer may be blocked on a full pipe
		_ = r.src.Close()
	}
	waitErr := r.src.Wait()
	switch {
	case scanErr != nil && errors.Is(scanErr, bufio.ErrTooLong):
		return perr.Wrapf(scanErr, perr.ErrorCodePartialArchive, "line %d exceeds %d bytes", r.lines+1, maxLineSize)
	case scanErr != nil:
		return perr.Wrapf(errors.Join(scanErr, waitErr), perr.ErrorCodePartialArchive, "archive read failed after %d lines", r.lines)
	case waitErr != nil:
		return perr.Wrapf(waitErr, perr.ErrorCodePartialArchive, "decompressor failed after %d lines", r.lines)
	}
	return io.EOF
}

// Stats returns lines scanned (including blanks) and uncompressed bytes read so far
func (r *LineReader) Stats() (lines int, bytes int64) { return r.lines, r.bytes }
