// Package modkit provides module wiring and core deps for the HTTP surfaces
package modkit

import (
	"net/http"

	phttp "swifthub/internal/platform/net/http"
)

// Module is the common surface for route modules. Keep it tiny so modules stay decoupled
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Name returns the module name
	Name() string
}

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module

// Built is a plain struct with the fields modules care about
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Register func(phttp.Router)
}

// Build applies Option funcs and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Register: c.register,
	}
}

// module is the Module produced by New
type module struct{ b Built }

// New builds a Module straight from options
func New(opts ...Option) Module { return module{b: Build(opts...)} }

func (m module) Name() string { return m.b.Name }

// MountRoutes registers under Prefix when set, inside a group carrying the module middleware
func (m module) MountRoutes(r phttp.Router) {
	mount := func(sub phttp.Router) {
		sub.Group(func(g phttp.Router) {
			if len(m.b.Mw) > 0 {
				g.Use(m.b.Mw...)
			}
			m.b.Register(g)
		})
	}
	if m.b.Prefix != "" {
		r.Route(m.b.Prefix, mount)
		return
	}
	mount(r)
}

// Mount mounts every module on r and logs what was mounted
func Mount(d Deps, r phttp.Router, mods ...Module) {
	for _, m := range mods {
		m.MountRoutes(r)
		if d.Log != nil {
			d.Log.Debug().Str("module", m.Name()).Msg("module mounted")
		}
	}
}
