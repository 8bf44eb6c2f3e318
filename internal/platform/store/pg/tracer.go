package pg

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"redditimport/internal/platform/logger"
)

// A batch insert carries thousands of args and a VALUES list to match
const (
	maxLoggedArgs = 16
	maxLoggedSQL  = 512
)

// QueryEvent is one statement round trip
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer is told about every statement the adapter runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs each statement at info, slow ones at warn and failures at error.
// It logs at debug and above whatever the root level is, since LOG_SQL asked for it
func Tracer(root logger.Logger) QueryTracer {
	return sqlLog{root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type sqlLog struct{ log logger.Logger }

func (s sqlLog) OnQuery(ctx context.Context, ev QueryEvent) {
	level := zerolog.InfoLevel
	switch {
	case ev.Err != nil:
		level = zerolog.ErrorLevel
	case ev.Slow:
		level = zerolog.WarnLevel
	}
	s.log.WithLevel(level).Ctx(ctx).
		Str("sql", clip(compact(ev.SQL), maxLoggedSQL)).
		Int("arg_count", len(ev.Args)).
		Interface("args", ev.Args[:min(len(ev.Args), maxLoggedArgs)]).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1e3).
		Bool("slow", ev.Slow).
		Err(ev.Err).
		Msg("pg query")
}

// compact puts a statement on one line with single spaces
func compact(sql string) string { return strings.Join(strings.Fields(sql), " ") }

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
