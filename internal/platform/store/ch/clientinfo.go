package ch

import (
	"os"
	"runtime"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"redditimport/internal/core/version"
)

// BuildClientInfo tags queries in system.query_log with the app build,
// the role (import or fetch) and the host it ran on
func BuildClientInfo(role, app string) clickhouse.ClientInfo {
	app = strings.TrimSpace(app)
	if app == "" {
		app = "redditimport"
	}
	host, _ := os.Hostname()
	build := version.Info(app)

	var info clickhouse.ClientInfo
	for _, p := range [][2]string{
		{app, build.Version},
		{"role", strings.TrimSpace(role)},
		{"commit", build.Commit},
		{"go", runtime.Version()},
		{"host", host},
	} {
		info.Products = append(info.Products, struct{ Name, Version string }{p[0], p[1]})
	}
	return info
}
