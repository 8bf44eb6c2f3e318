// Package module is the contract between cmd wiring and service modules.
// It sits apart from modkit so a module's ports type can import it without a cycle
package module

import phttp "redditimport/internal/platform/net/http"

// Module mounts its routes and hands out its ports
type Module interface {
	Name() string
	Ports() any
	MountRoutes(r phttp.Router)
}
