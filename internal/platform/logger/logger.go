// Package logger owns the process-wide zerolog logger and the run-scoped
// fields (run id, source file) an import carries through its context
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"redditimport/internal/platform/config/raw"
)

// Logger is the project logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level  string
	Format string // console or json
	// Service is stamped on every line
	Service string
	// Writer defaults to stderr
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_CALLER and LOG_SAMPLE_EVERY
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       strings.ToLower(env.Get("LEVEL", "info")),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", "redditimport"),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	rootOnce sync.Once
	rootLog  zerolog.Logger
)

// Init builds the root logger; calls after the first, or after Get, are ignored
func Init(opt Options) {
	rootOnce.Do(func() { rootLog = build(opt) })
}

// Get returns the root logger, building it from the environment if Init never ran
func Get() *Logger {
	Init(FromEnv())
	return &rootLog
}

func build(opt Options) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opt.Writer
	if out == nil {
		out = os.Stderr
	}
	if opt.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.WithCaller {
		ctx = ctx.Caller()
	}
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		ctx = ctx.Str("go_version", bi.GoVersion)
	}
	for k, v := range opt.StaticFields {
		ctx = ctx.Str(k, v)
	}

	log := ctx.Logger()
	if opt.SampleEvery > 1 {
		log = log.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return log
}

// parseLevel accepts zerolog level names plus "warning"; anything else is info
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

type ctxField string

const (
	fieldRunID ctxField = "run_id"
	fieldFile  ctxField = "file"
)

func withField(ctx context.Context, f ctxField, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, f, v)
}

// WithRun tags ctx with the id of the current import run
func WithRun(ctx context.Context, runID string) context.Context {
	return withField(ctx, fieldRunID, runID)
}

// WithFile tags ctx with the archive being imported
func WithFile(ctx context.Context, path string) context.Context {
	return withField(ctx, fieldFile, path)
}

// C is the root logger plus whatever run fields ctx carries
func C(ctx context.Context) *Logger {
	lc := Get().With()
	for _, f := range []ctxField{fieldRunID, fieldFile} {
		if v, _ := ctx.Value(f).(string); v != "" {
			lc = lc.Str(string(f), v)
		}
	}
	l := lc.Logger()
	return &l
}

// Named is the root logger with a component field; "" returns the root itself
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
