package service

import (
	"context"
	"errors"
	"io"

	"github.com/dustin/go-humanize"

	"redditimport/internal/adapters/decompress"
	"redditimport/internal/adapters/ingest/pushshift"
	"redditimport/internal/modkit/repokit"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/logger"
	"redditimport/internal/services/importer/domain"
)

// importJSON streams a zstd archive of JSON lines into its partition table
func (s *Service) importJSON(ctx context.Context, f domain.SourceFile, rep *domain.FileReport) (retErr error) {
	log := logger.C(ctx)
	kind := f.Class.Kind
	schema := domain.SchemaFor(kind)
	table := f.Table()

	if err := repokit.Bound(ctx, s.DB, s.Tables, func(r domain.TableRepo) error {
		return r.EnsureTable(ctx, schema, table)
	}); err != nil {
		return err
	}

	indexesDown := false
	if !s.Cfg.KeepIndexes {
		if err := repokit.Bound(ctx, s.DB, s.Tables, func(r domain.TableRepo) error {
			return r.DisableIndexes(ctx, table)
		}); err != nil {
			return err
		}
		indexesDown = true
		defer func() {
			if !indexesDown {
				return
			}
			if err := s.enableIndexes(context.WithoutCancel(ctx), table); err != nil {
				log.Error().Err(err).Str("table", table).Msg("re-enabling indexes failed")
			}
		}()
	}

	st, err := s.Open.For(decompress.ZstdCodec).Open(ctx, f.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	failures := s.NewFailureLog(f.FailureLogPath)
	defer func() {
		if err := failures.Flush(); err != nil {
			log.Error().Err(err).Str("failure_log", f.FailureLogPath).Msg("writing failure log failed")
			retErr = errors.Join(retErr, err)
		}
	}()

	lr := pushshift.NewLineReader(st)
	batch := make(domain.Batch, 0, s.Cfg.BatchSize)
	lines := make([]int, 0, s.Cfg.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		committed, failed, err := s.loader.Flush(ctx, schema, table, batch)
		rep.Committed += committed
		rep.Batches++
		for _, r := range failed {
			rep.Failed++
			failures.Add(domain.FailedInsert{
				Table:    table,
				Line:     lines[r.Index],
				Reason:   r.Reason,
				SQLState: r.SQLState,
				Fields:   r.Row.Fields(),
			})
			log.Warn().Int("line", lines[r.Index]).Str("sqlstate", r.SQLState).Str("reason", r.Reason).Msg("row rejected")
		}
		batch = batch[:0]
		lines = lines[:0]
		rep.Lines, rep.Bytes = lr.Stats()
		s.board.update(f.Path, *rep)
		if err != nil {
			return perr.Wrapf(err, perr.CodeOf(err), "%s: batch %d into %s after %d rows", f.Name, rep.Batches, table, rep.Parsed)
		}
		if len(failed) > 0 {
			return failures.Flush()
		}
		return nil
	}

	var partial error
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := lr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if perr.IsCode(err, perr.ErrorCodePartialArchive) {
				partial = err
				break
			}
			return err
		}
		row, err := s.Parser.Parse(kind, line)
		if err != nil {
			if perr.IsCode(err, perr.ErrorCodeMalformed) {
				rep.Malformed++
				n, _ := lr.Stats()
				log.Debug().Int("line", n).Err(err).Msg("malformed record dropped")
				continue
			}
			return err
		}
		rep.Parsed++
		n, _ := lr.Stats()
		batch = append(batch, row)
		lines = append(lines, n)
		if len(batch) >= s.Cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	rep.Lines, rep.Bytes = lr.Stats()

	log.Info().Str("table", table).Msgf("Inserted ~%s rows into %s", humanize.Comma(int64(rep.Committed)), table)

	if partial != nil {
		return partial
	}
	if err := failures.Flush(); err != nil {
		return err
	}
	if indexesDown {
		if err := s.enableIndexes(ctx, table); err != nil {
			return err
		}
		indexesDown = false
	}
	if err := repokit.SyncCommit(ctx, s.DB); err != nil {
		return perr.Wrapf(err, perr.CodeOf(err), "%s: flushing commits before the marker", f.Name)
	}
	return s.Track.MarkDone(f)
}

func (s *Service) enableIndexes(ctx context.Context, table string) error {
	return repokit.Bound(ctx, s.DB, s.Tables, func(r domain.TableRepo) error {
		return r.EnableIndexes(ctx, table)
	})
}
