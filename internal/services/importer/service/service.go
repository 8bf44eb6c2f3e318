// Package service provides the archive importer implementation
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"redditimport/internal/adapters/decompress"
	"redditimport/internal/adapters/ingest/pushshift"
	"redditimport/internal/modkit/repokit"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/logger"
	"redditimport/internal/services/importer/domain"
	"redditimport/internal/services/importer/guardrails"
)

// Config holds configuration options for the importer service
type Config struct {
	// BatchSize is the number of rows per multi row insert; <=0 -> 1000
	BatchSize int
	// Workers is the number of files imported in parallel; <=0 -> 1
	Workers int
	// SkipDone skips files whose completion marker exists
	SkipDone bool
	// KeepIndexes leaves secondary indexes in place during a bulk load
	KeepIndexes bool

	// Transaction retry on lock conflicts
	MaxRetries int
	RetryBase  time.Duration

	Timeouts guardrails.Timeouts

	// EnableLeases claims each file in the import_leases table before loading it
	EnableLeases bool
}

// Service implements the archive importer
type Service struct {
	DB     repokit.TxRunner
	Tables repokit.Binder[domain.TableRepo]
	Parser domain.Parser
	Track  domain.Tracker
	Open   decompress.Set
	SQL    domain.SQLExecutor
	Cfg    Config

	// Ledger records file attempts; nil disables
	Ledger repokit.Binder[domain.LedgerRepo]
	// Stats receives per file reports; nil disables
	Stats domain.StatsSink
	// Lease guards a file against concurrent importers; used when Cfg.EnableLeases
	Lease guardrails.Lease

	// NewFailureLog opens the failure log of one file
	NewFailureLog func(path string) domain.FailureLog

	loader *Loader
	board  *board
	now    func() time.Time
	newID  func() string
}

// New constructs the importer service
func New(
	db repokit.TxRunner,
	tables repokit.Binder[domain.TableRepo],
	parser domain.Parser,
	track domain.Tracker,
	open decompress.Set,
	sql domain.SQLExecutor,
	failures func(path string) domain.FailureLog,
	cfg Config,
) *Service {
	if db == nil {
		panic("importer.Service requires a non nil TxRunner")
	}
	if tables == nil {
		panic("importer.Service requires a non nil table binder")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	cfg.Workers = max(cfg.Workers, 1)
	return &Service{
		DB: db, Tables: tables,
		Parser: parser, Track: track, Open: open, SQL: sql,
		NewFailureLog: failures,
		Cfg:           cfg,
		loader: &Loader{
			DB:         db,
			Tables:     tables,
			MaxRetries: cfg.MaxRetries,
			RetryBase:  cfg.RetryBase,
			Timeouts:   cfg.Timeouts,
		},
		board: newBoard(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithLedger wires the import ledger
func (s *Service) WithLedger(b repokit.Binder[domain.LedgerRepo]) *Service {
	s.Ledger = b
	return s
}

// WithStats wires a stats sink
func (s *Service) WithStats(sink domain.StatsSink) *Service {
	s.Stats = sink
	return s
}

// WithLease wires a file lease
func (s *Service) WithLease(l guardrails.Lease) *Service {
	s.Lease = l
	return s
}

// Snapshot implements domain.StatusPort
func (s *Service) Snapshot() domain.Status { return s.board.snapshot() }

// Run implements domain.RunnerPort. It walks root, imports every recognized
// file and returns an error when any file ended in error
func (s *Service) Run(ctx context.Context, root string) (domain.Summary, error) {
	runID := s.newID()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)
	start := s.now()

	sum := domain.Summary{RunID: runID}
	files, err := Walk(ctx, root)
	if err != nil {
		return sum, err
	}
	log.Info().Str("root", root).Int("files", len(files)).Int("workers", s.Cfg.Workers).Msg("import run started")

	if s.Ledger != nil {
		if err := repokit.Bound(ctx, s.DB, s.Ledger, func(r domain.LedgerRepo) error {
			return r.EnsureLedger(ctx)
		}); err != nil {
			log.Warn().Err(err).Msg("import ledger unavailable, continuing without it")
			s.Ledger = nil
		}
	}

	s.board.begin(runID, root)
	reports := make([]domain.FileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Cfg.Workers)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			reports[i] = s.importFile(gctx, runID, f)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range reports {
		if r.Path == "" {
			continue
		}
		sum.Add(r)
	}
	sum.Elapsed = s.now().Sub(start)
	s.board.end(sum)

	log.Info().
		Int("files", sum.Files).
		Int("ok", sum.OK).
		Int("skipped", sum.Skipped).
		Int("partial", sum.Partial).
		Int("errors", sum.Errors).
		Str("committed", humanize.Comma(sum.Committed)).
		Int64("failed", sum.Failed).
		Int64("malformed", sum.Malformed).
		Dur("elapsed", sum.Elapsed).
		Msg("import run finished")

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	if sum.Errors > 0 {
		return sum, fmt.Errorf("%d of %d files failed", sum.Errors, sum.Files)
	}
	return sum, nil
}

// importFile runs one file and always returns a report
func (s *Service) importFile(ctx context.Context, runID string, f domain.SourceFile) domain.FileReport {
	ctx = logger.WithFile(ctx, f.Path)
	log := logger.C(ctx)
	rep := domain.FileReport{
		Path:      f.Path,
		Table:     f.Table(),
		Format:    f.Class.Format.String(),
		StartedAt: s.now(),
	}

	if s.Cfg.SkipDone && s.Track.IsDone(f) {
		rep.Status = domain.StatusSkipped
		log.Debug().Str("marker", f.MarkerPath).Msg("already imported, skipping")
		return rep
	}

	s.board.start(f.Path, rep)
	defer func() { s.board.finish(f.Path, rep) }()

	var err error
	if s.Lease != nil && s.Cfg.EnableLeases {
		err = s.Lease(ctx, f.Path, runID, func(ctx context.Context) error {
			return s.attempt(ctx, runID, f, &rep)
		})
		if errors.Is(err, guardrails.ErrLeaseHeld) {
			rep.Status = domain.StatusSkipped
			rep.Warning = "file leased by another importer"
			log.Info().Msg("file leased by another importer, skipping")
			return rep
		}
	} else {
		err = s.attempt(ctx, runID, f, &rep)
	}

	rep.Elapsed = s.now().Sub(rep.StartedAt)
	switch {
	case err == nil:
		rep.Status = domain.StatusOK
	case perr.IsCode(err, perr.ErrorCodePartialArchive):
		rep.Status = domain.StatusPartial
		rep.Warning = err.Error()
	default:
		rep.Status = domain.StatusError
		rep.Err = err.Error()
	}
	s.record(ctx, runID, rep)
	s.logReport(ctx, f, rep, err)
	return rep
}

// attempt wraps one import with the ledger start and finish rows
func (s *Service) attempt(ctx context.Context, runID string, f domain.SourceFile, rep *domain.FileReport) error {
	ctx, cancel := guardrails.WithFile(ctx, s.Cfg.Timeouts)
	defer cancel()

	if s.Ledger != nil {
		if err := repokit.Bound(ctx, s.DB, s.Ledger, func(r domain.LedgerRepo) error {
			return r.StartFile(ctx, runID, f)
		}); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("ledger start failed")
		}
	}

	var err error
	switch f.Class.Format {
	case pushshift.JSON:
		err = s.importJSON(ctx, f, rep)
	case pushshift.SQLDump, pushshift.SQLDumpGz:
		err = s.importSQL(ctx, f, rep)
	default:
		err = perr.InvalidArgf("%s: unsupported format %s", f.Name, f.Class.Format)
	}
	if cause := context.Cause(ctx); err != nil && errors.Is(cause, guardrails.ErrBudget) {
		err = fmt.Errorf("%w (%v)", err, cause)
	}
	return err
}

// record persists the report to the ledger and stats sink on a detached context
func (s *Service) record(ctx context.Context, runID string, rep domain.FileReport) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	log := logger.C(ctx)

	if s.Ledger != nil {
		if err := repokit.Bound(dctx, s.DB, s.Ledger, func(r domain.LedgerRepo) error {
			return r.FinishFile(dctx, runID, rep)
		}); err != nil {
			log.Warn().Err(err).Msg("ledger finish failed")
		}
	}
	if s.Stats != nil {
		if err := s.Stats.Record(dctx, runID, rep); err != nil {
			log.Warn().Err(err).Msg("stats record failed")
		}
	}
}

func (s *Service) logReport(ctx context.Context, f domain.SourceFile, rep domain.FileReport, err error) {
	log := logger.C(ctx)
	var ev *zerolog.Event
	switch rep.Status {
	case domain.StatusPartial:
		ev = log.Warn().Err(err)
	case domain.StatusError:
		ev = log.Error().Err(err)
	default:
		ev = log.Info()
	}
	ev.Str("table", rep.Table).
		Str("partition", f.Class.Partition.String()).
		Str("format", rep.Format).
		Str("status", string(rep.Status)).
		Int("lines", rep.Lines).
		Int("parsed", rep.Parsed).
		Int("malformed", rep.Malformed).
		Int("committed", rep.Committed).
		Int("failed", rep.Failed).
		Int("batches", rep.Batches).
		Str("bytes", humanize.IBytes(uint64(max(rep.Bytes, 0)))).
		Dur("elapsed", rep.Elapsed).
		Msg("file finished")
}
