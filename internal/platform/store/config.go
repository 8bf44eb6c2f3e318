package store

import (
	"time"

	"redditimport/internal/platform/config"
	"redditimport/internal/platform/logger"
)

// Config selects and configures the backends Open connects
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures the target database
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// zero values mean 20 attempts and a 3s ping
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures the optional clickhouse stats sink
type CHConfig struct {
	Enabled bool
	URL     string
	// Role is reported as the clickhouse client product
	Role string
}

// ConfigFromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* under root.
// Postgres is always enabled; clickhouse only when its DBURL is set
func ConfigFromEnv(root config.Conf, app, role string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	chURL := ch.MayString("DBURL", "")
	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:        true,
			URL:            pg.MustString("DBURL"),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 8)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 2000),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 0),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 0),
		},
		CH: CHConfig{Enabled: chURL != "", URL: chURL, Role: role},
	}
}

// Option adjusts the Store before any backend is opened
type Option func(*Store) error

// WithLogger sets the logger backends trace and report through
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
