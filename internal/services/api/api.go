// Package api provides the HTTP API for the application
package api

import (
	"prosefix/internal/core/annotate"
	"prosefix/internal/core/checker"
	"prosefix/internal/platform/config"
	"prosefix/internal/platform/logger"
	phttp "prosefix/internal/platform/net/http"
	"prosefix/internal/platform/store"

	"prosefix/internal/modkit"
	"prosefix/internal/modkit/httpkit"

	correctionsmod "prosefix/internal/services/corrections/module"
	metamod "prosefix/internal/services/meta/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger

	Annotator annotate.Annotator
	Checker   checker.Checker
	Refiner   checker.Refiner

	EnableSwagger bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:       opt.Config,
		Annotator: opt.Annotator,
		Checker:   opt.Checker,
		Refiner:   opt.Refiner,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	mods := []modkit.Module{
		metamod.New(deps),
		correctionsmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountSwagger(r, opt.EnableSwagger)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
