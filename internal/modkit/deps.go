package modkit

import (
	"prosefix/internal/core/annotate"
	"prosefix/internal/core/checker"
	"prosefix/internal/modkit/repokit"
	"prosefix/internal/platform/config"
	"prosefix/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner

	// Shared linguistic collaborators, constructed once at process start
	// and passed read-only to every stage (see pipeline docs)
	Annotator annotate.Annotator
	Checker   checker.Checker
	Refiner   checker.Refiner
}
