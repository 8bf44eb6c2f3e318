// Package config reads importer settings from prefixed environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"redditimport/internal/platform/logger"
)

// Conf is a view over the environment under a key prefix such as
// "CORE_IMPORT_" or "SERVICE_PGSQL_"
type Conf struct{ prefix string }

// New is the unprefixed root view
func New() Conf { return Conf{} }

// Prefix narrows c; prefixes concatenate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MustInt panics when key is unset or not an integer
func (c Conf) MustInt(key string) int {
	n, err := strconv.Atoi(c.MustString(key))
	if err != nil {
		logger.Get().Panic().Err(err).Str("key", c.key(key)).Msg("invalid int env")
	}
	return n
}

// MayString returns def when key is unset or blank
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns def when key is unset; an unparsable value warns and returns def
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool accepts anything strconv.ParseBool does
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration accepts time.ParseDuration syntax ("90s", "6h")
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayBytes accepts human sizes ("2GiB", "2048MB"); zero is treated as invalid
func (c Conf) MayBytes(key string, def uint64) uint64 {
	return may(c, key, def, func(s string) (uint64, error) {
		n, err := humanize.ParseBytes(s)
		if err == nil && n == 0 {
			err = strconv.ErrRange
		}
		return n, err
	})
}

// MayEnum returns the lower-cased match from allowed, def when unset,
// and panics on anything else
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum env")
	return ""
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("invalid env value, using default")
		return def
	}
	return v
}
