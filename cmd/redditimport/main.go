package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"redditimport/internal/core/version"
	"redditimport/internal/modkit"
	"redditimport/internal/modkit/module"
	"redditimport/internal/modkit/repokit"
	"redditimport/internal/platform/config"
	"redditimport/internal/platform/logger"
	phttp "redditimport/internal/platform/net/http"
	"redditimport/internal/platform/net/middleware"
	"redditimport/internal/platform/store"

	"redditimport/internal/services/importer/domain"
	importmod "redditimport/internal/services/importer/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() { os.Exit(run()) }

func run() int {
	var (
		fDataDir  = flag.String("data-dir", "", "directory holding the archives (CORE_IMPORT_DATA_DIR)")
		fSkipDone = flag.Bool("skip-done", false, "skip files that carry a .done marker")
		fWorkers  = flag.Int("workers", 0, "files imported in parallel (CORE_IMPORT_WORKERS)")
		fBatch    = flag.Int("batch", 0, "rows per multi-row insert (CORE_IMPORT_BATCH_SIZE)")
		fStatus   = flag.String("status-addr", "", "serve status endpoints on addr, e.g. :8080")
		fVersion  = flag.Bool("version", false, "print the build and exit")
	)
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info("redditimport"))
		return 0
	}

	// flags win over env; modules only read config
	mustSetEnv("CORE_IMPORT_DATA_DIR", *fDataDir)
	if flag.NArg() > 0 {
		mustSetEnv("CORE_IMPORT_DATA_DIR", flag.Arg(0))
	}
	if *fSkipDone {
		mustSetEnv("CORE_IMPORT_SKIP_DONE", "1")
	}
	if *fWorkers > 0 {
		mustSetEnv("CORE_IMPORT_WORKERS", strconv.Itoa(*fWorkers))
	}
	if *fBatch > 0 {
		mustSetEnv("CORE_IMPORT_BATCH_SIZE", strconv.Itoa(*fBatch))
	}
	mustSetEnv("CORE_IMPORT_STATUS_ADDR", *fStatus)

	root := config.New()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.ConfigFromEnv(root, "redditimport", "importer"), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	im, err := importmod.New(deps)
	if err != nil {
		l.Error().Err(err).Msg("importer config")
		return 1
	}
	if err := im.Prepare(ctx); err != nil {
		l.Warn().Err(err).Msg("clickhouse stats table unavailable")
	}
	opts := im.Options()

	if opts.StatusAddr != "" {
		srv := phttp.NewServer(opts.StatusAddr, func(m *chi.Mux) {
			m.Use(middleware.Defaults(time.Second, opts.StatusOrigins)...)
		})
		modkit.Mount(srv.Router(), im)
		phttp.MountProfiler(srv.Router(), "/debug", root.MayBool("CORE_IMPORT_PROFILER", false))
		go func() {
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Str("addr", opts.StatusAddr).Msg("status server stopped")
			}
		}()
		l.Info().Str("addr", opts.StatusAddr).Msg("status server listening")
	}

	runner := module.MustPortsOf[domain.RunnerPort](im)
	sum, err := runner.Run(ctx, opts.DataDir)
	switch {
	case errors.Is(err, context.Canceled):
		l.Warn().Str("run_id", sum.RunID).Msg("import interrupted")
		return 130
	case err != nil:
		l.Error().Err(err).Str("run_id", sum.RunID).Msg("import failed")
		return 1
	}
	return 0
}
