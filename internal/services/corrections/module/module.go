// Package module wires corrections into the API using modkit
package module

import (
	"net/http"

	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/pipeline"
	modkit "prosefix/internal/modkit"
	"prosefix/internal/modkit/httpkit"
	str "prosefix/internal/platform/strings"
	correctionshttp "prosefix/internal/services/corrections/http"
	correctionsrepo "prosefix/internal/services/corrections/repo"
	correctionssvc "prosefix/internal/services/corrections/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)

	svc correctionssvc.Service
}

// New constructs a corrections module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("corrections"),
		modkit.WithPrefix("/corrections"),
	}, opts...)...)

	lex := lexicon.MustLoad()
	pipe := pipeline.Default(deps.Log, deps.Annotator, deps.Checker, deps.Refiner, lex)

	repo := correctionsrepo.NewPG()
	svc := correctionssvc.New(deps.PG, repo, pipe)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Corrections: adaptCorrectionsPort{svc: svc}}

	external := b.Register
	m.register = func(r httpkit.Router) {
		correctionshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
