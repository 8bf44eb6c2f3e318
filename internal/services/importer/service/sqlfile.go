package service

import (
	"context"
	"errors"
	"io"

	"redditimport/internal/adapters/decompress"
	"redditimport/internal/adapters/ingest/pushshift"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/services/importer/domain"
)

// importSQL pipes a whole SQL dump through the executor
func (s *Service) importSQL(ctx context.Context, f domain.SourceFile, rep *domain.FileReport) error {
	if s.SQL == nil {
		return perr.Newf(perr.ErrorCodeUnavailable, "%s: no SQL executor configured", f.Name)
	}
	codec := decompress.None
	if f.Class.Format == pushshift.SQLDumpGz {
		codec = decompress.GzipCodec
	}
	st, err := s.Open.For(codec).Open(ctx, f.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	cr := &countingReader{r: st}
	execErr := s.SQL.Exec(ctx, cr)
	rep.Bytes = cr.n
	s.board.update(f.Path, *rep)

	// a broken archive explains a failed script better than the script error
	if cr.err != nil {
		return perr.Wrapf(errors.Join(cr.err, execErr), perr.ErrorCodePartialArchive, "%s: archive read failed after %d bytes", f.Name, cr.n)
	}
	if execErr != nil {
		return execErr
	}
	if err := st.Wait(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePartialArchive, "%s: decompressor failed after %d bytes", f.Name, cr.n)
	}
	return s.Track.MarkDone(f)
}

// countingReader counts bytes and keeps the first non EOF read error
type countingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && err != io.EOF && c.err == nil {
		c.err = err
	}
	return n, err
}
