package modkit

import (
	"redditimport/internal/modkit/repokit"
	"redditimport/internal/platform/config"
	"redditimport/internal/platform/logger"
)

// Deps are the shared handles cmd passes to every module
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	// CH is nil when ClickHouse is not configured
	CH repokit.Clickhouse
}

// Named returns a child logger tagged with the module name
func (d Deps) Named(module string) logger.Logger {
	return d.Log.With().Str("module", module).Logger()
}
