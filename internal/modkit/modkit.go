// Package modkit wires service modules: shared deps, build options and route mounting
package modkit

import "redditimport/internal/modkit/module"

// Module is the surface cmd wiring works against
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
