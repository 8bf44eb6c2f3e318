// Package module wires the importer service from shared deps and CORE_IMPORT_ config
package module

import (
	"context"
	"time"

	"redditimport/internal/adapters/decompress"
	"redditimport/internal/adapters/sqlexec"
	"redditimport/internal/modkit"
	"redditimport/internal/modkit/repokit"
	"redditimport/internal/modkit/swaggerkit"
	phttp "redditimport/internal/platform/net/http"
	"redditimport/internal/services/importer/domain"
	"redditimport/internal/services/importer/guardrails"
	imhttp "redditimport/internal/services/importer/http"
	"redditimport/internal/services/importer/http/docs"
	"redditimport/internal/services/importer/ingest"
	"redditimport/internal/services/importer/repo"
	"redditimport/internal/services/importer/service"
)

// Ports defines the importer module ports
type Ports struct {
	Runner domain.RunnerPort
	Status domain.StatusPort
}

// Module implements the importer module
type Module struct {
	deps    modkit.Deps
	opts    Options
	ports   Ports
	stats   *repo.CHStats
	started time.Time
}

// New constructs the importer module from deps.Cfg.
// It fails when the options are invalid or the decompressor cannot be built
func New(deps modkit.Deps) (*Module, error) {
	return NewWithOptions(deps, FromConfig(deps.Cfg))
}

// NewWithOptions constructs the importer module from explicit options
func NewWithOptions(deps modkit.Deps, opts Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := deps.Named("importer")

	set, err := decompress.NewSet(decompress.Config{
		Mode:      decompress.Mode(opts.Decompressor),
		MaxMemory: opts.ZstdMemory,
		ZstdBin:   opts.ZstdBin,
		GzipBin:   opts.GzipBin,
	})
	if err != nil {
		return nil, err
	}

	var exec domain.SQLExecutor
	if opts.DatabaseURL != "" {
		p, err := sqlexec.NewPsql(opts.PsqlBin, opts.DatabaseURL, "redditimport")
		if err != nil {
			return nil, err
		}
		exec = p
	} else {
		log.Warn().Msg("SERVICE_PGSQL_DBURL unset; SQL dumps will fail")
	}

	// loader commits are asynchronous; a file is fenced with repokit.SyncCommit before its marker
	db := repokit.WithBeginHooks(deps.PG,
		repokit.SetLocal("synchronous_commit", "off"),
		repokit.SetLocal("statement_timeout", "0"),
	)

	svc := service.New(
		db, repo.NewPG(),
		ingest.NewParser(), ingest.NewFileTracker(),
		set, exec,
		func(path string) domain.FailureLog { return ingest.NewFailureFile(path) },
		service.Config{
			BatchSize:    opts.BatchSize,
			Workers:      opts.Workers,
			SkipDone:     opts.SkipDone,
			KeepIndexes:  opts.KeepIndexes,
			MaxRetries:   opts.MaxRetries,
			RetryBase:    opts.RetryBase,
			Timeouts:     guardrails.Timeouts{File: opts.FileTimeout, Flush: opts.FlushTimeout},
			EnableLeases: opts.EnableLeases,
		},
	)
	if opts.Ledger {
		svc.WithLedger(repo.NewLedger())
	}
	if opts.EnableLeases {
		svc.WithLease(guardrails.MakeFileLease(db, opts.LeaseTTL))
	}
	stats := repo.NewCHStats(deps.CH)
	if stats != nil {
		svc.WithStats(stats)
	}

	return &Module{
		deps:    deps,
		opts:    opts,
		ports:   Ports{Runner: svc, Status: svc},
		stats:   stats,
		started: time.Now().UTC(),
	}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "importer" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// Prepare creates the ClickHouse stats table when a stats sink is wired
func (m *Module) Prepare(ctx context.Context) error {
	if m.stats == nil {
		return nil
	}
	return m.stats.EnsureTable(ctx)
}

// MountRoutes mounts the status endpoints and, when enabled, their docs
func (m *Module) MountRoutes(r phttp.Router) {
	swaggerkit.Mount(r, swaggerkit.Options{Enabled: m.opts.Docs, Instance: docs.InstanceName})

	var q repokit.Queryer
	if m.opts.Ledger && m.deps.PG != nil {
		q = m.deps.PG
	}
	imhttp.Register(r, imhttp.Deps{
		ServiceName: "redditimport",
		StartedAt:   m.started,
		Status:      m.ports.Status,
		DB:          q,
		PG:          m.deps.PG,
	})
}
