package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"redditimport/internal/adapters/ingest/pushshift"
	"redditimport/internal/platform/config"
	"redditimport/internal/platform/logger"
)

func main() { os.Exit(run()) }

func run() int {
	cfg := config.New().Prefix("CORE_FETCH_")
	var (
		fDir      = flag.String("dir", cfg.MayString("DIR", "."), "download directory")
		fKind     = flag.String("kind", "both", "submissions | comments | both")
		fStart    = flag.String("start", "", "first month YYYY-MM")
		fEnd      = flag.String("end", "", "last month YYYY-MM inclusive")
		fBase     = flag.String("base-url", cfg.MayString("BASE_URL", pushshift.DefaultBaseURL), "archive mirror")
		fParallel = flag.Int("parallel", cfg.MayInt("PARALLEL", 2), "concurrent downloads")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	start, err := pushshift.ParsePartition(*fStart)
	if err != nil {
		l.Error().Err(err).Msg("bad -start")
		return 2
	}
	end := start
	if *fEnd != "" {
		if end, err = pushshift.ParsePartition(*fEnd); err != nil {
			l.Error().Err(err).Msg("bad -end")
			return 2
		}
	}
	if end.Before(start) {
		l.Error().Str("start", start.String()).Str("end", end.String()).Msg("-end before -start")
		return 2
	}

	var kinds []pushshift.Kind
	switch *fKind {
	case "submissions":
		kinds = []pushshift.Kind{pushshift.Submissions}
	case "comments":
		kinds = []pushshift.Kind{pushshift.Comments}
	case "both":
		kinds = []pushshift.Kind{pushshift.Submissions, pushshift.Comments}
	default:
		l.Error().Str("kind", *fKind).Msg("kind must be submissions, comments or both")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := pushshift.NewFetcher(*fDir)
	f.BaseURL = *fBase

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*fParallel, 1))
	for _, p := range pushshift.MonthRange(start, end) {
		for _, k := range kinds {
			g.Go(func() error {
				log := l.With().Str("kind", k.String()).Str("month", p.String()).Logger()
				res, err := f.Fetch(gctx, k, p)
				if err != nil {
					log.Error().Err(err).Str("url", f.URL(k, p)).Msg("download failed")
					return err
				}
				if res.Skipped {
					log.Debug().Str("path", res.Path).Msg("already present")
					return nil
				}
				log.Info().Str("path", res.Path).Str("size", humanize.IBytes(uint64(res.Bytes))).Msg("downloaded")
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 1
	}
	return 0
}
