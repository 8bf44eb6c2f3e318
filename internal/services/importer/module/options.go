package module

import (
	"strings"
	"time"

	"redditimport/internal/adapters/decompress"
	"redditimport/internal/platform/config"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/validate"
	"redditimport/internal/services/importer/domain"
	"redditimport/internal/services/importer/repo"
)

// Options holds configuration options for the importer
type Options struct {
	DataDir     string        `env:"CORE_IMPORT_DATA_DIR"`
	SkipDone    bool          `env:"CORE_IMPORT_SKIP_DONE"`
	BatchSize   int           `env:"CORE_IMPORT_BATCH_SIZE" validate:"min=1"`
	Workers     int           `env:"CORE_IMPORT_WORKERS" validate:"min=1,max=64"`
	KeepIndexes bool          `env:"CORE_IMPORT_KEEP_INDEXES"`
	MaxRetries  int           `env:"CORE_IMPORT_RETRIES" validate:"min=0,max=20"`
	RetryBase   time.Duration `env:"CORE_IMPORT_RETRY_BASE" validate:"min=0"`

	FileTimeout  time.Duration `env:"CORE_IMPORT_FILE_TIMEOUT" validate:"min=0"`
	FlushTimeout time.Duration `env:"CORE_IMPORT_FLUSH_TIMEOUT" validate:"min=0"`
	EnableLeases bool          `env:"CORE_IMPORT_LEASES"`
	LeaseTTL     time.Duration `env:"CORE_IMPORT_LEASE_TTL" validate:"min=0"`
	Ledger       bool          `env:"CORE_IMPORT_LEDGER"`

	Decompressor string `env:"CORE_IMPORT_DECOMPRESSOR" validate:"oneof=library process"`
	ZstdMemory   uint64 `env:"CORE_IMPORT_ZSTD_MEMORY" validate:"min=1"`
	ZstdBin      string `env:"CORE_IMPORT_ZSTD_BIN" validate:"required"`
	GzipBin      string `env:"CORE_IMPORT_GZIP_BIN" validate:"required"`
	PsqlBin      string `env:"CORE_IMPORT_PSQL_BIN" validate:"required"`

	// DatabaseURL feeds the psql child; empty disables SQL dump imports
	DatabaseURL string `env:"SERVICE_PGSQL_DBURL"`
	StatusAddr  string `env:"CORE_IMPORT_STATUS_ADDR"`

	// StatusOrigins enables CORS on the status endpoints for these origins
	StatusOrigins []string `env:"CORE_IMPORT_STATUS_ORIGINS"`
	// Docs serves Swagger UI for the status endpoints under /docs
	Docs bool `env:"CORE_IMPORT_DOCS"`
}

// FromConfig reads the importer options from config with CORE_IMPORT_ prefix
func FromConfig(cfg config.Conf) Options {
	im := cfg.Prefix("CORE_IMPORT_")
	def, _ := decompress.ParseMemory(decompress.DefaultMaxMemory)
	return Options{
		DataDir:      im.MayString("DATA_DIR", "."),
		SkipDone:     im.MayBool("SKIP_DONE", false),
		BatchSize:    im.MayInt("BATCH_SIZE", domain.DefaultBatchSize),
		Workers:      im.MayInt("WORKERS", 1),
		KeepIndexes:  im.MayBool("KEEP_INDEXES", false),
		MaxRetries:   im.MayInt("RETRIES", 3),
		RetryBase:    im.MayDuration("RETRY_BASE", 250*time.Millisecond),
		FileTimeout:  im.MayDuration("FILE_TIMEOUT", 0),
		FlushTimeout: im.MayDuration("FLUSH_TIMEOUT", 5*time.Minute),
		EnableLeases: im.MayBool("LEASES", false),
		LeaseTTL:     im.MayDuration("LEASE_TTL", 6*time.Hour),
		Ledger:       im.MayBool("LEDGER", true),
		Decompressor: im.MayEnum("DECOMPRESSOR", string(decompress.ModeLibrary), string(decompress.ModeLibrary), string(decompress.ModeProcess)),
		ZstdMemory:   im.MayBytes("ZSTD_MEMORY", def),
		ZstdBin:      im.MayString("ZSTD_BIN", "zstd"),
		GzipBin:      im.MayString("GZIP_BIN", "gzip"),
		PsqlBin:      im.MayString("PSQL_BIN", "psql"),
		DatabaseURL:  cfg.Prefix("SERVICE_PGSQL_").MayString("DBURL", ""),
		StatusAddr:   im.MayString("STATUS_ADDR", ""),

		StatusOrigins: splitList(im.MayString("STATUS_ORIGINS", "")),
		Docs:          im.MayBool("DOCS", false),
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks ranges and the per statement parameter ceiling of both schemas
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return err
	}
	for _, s := range []domain.Schema{domain.SubmissionSchema, domain.CommentSchema} {
		if limit := repo.MaxBatchRows(s); o.BatchSize > limit {
			return perr.InvalidArgf("CORE_IMPORT_BATCH_SIZE must be at most %d for %s", limit, s.Kind)
		}
	}
	return nil
}
