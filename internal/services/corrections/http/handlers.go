// Package http provides http transport for corrections
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"prosefix/internal/modkit/httpkit"
	perr "prosefix/internal/platform/errors"
	"prosefix/internal/services/corrections/domain"
	svc "prosefix/internal/services/corrections/service"
)

// Register mounts corrections endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.CorrectInput](r, "/correct", h.correct)
	httpkit.PostJSON[domain.RunsInput](r, "/runs", h.recent)
	httpkit.GetJSON(r, "/runs/{id}", h.run)
	httpkit.GetJSON(r, "/stages", h.stages)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /corrections/correct Corrections correctionsCorrect
// @Summary Run the correction pipeline over a text
// @Tags Corrections
// @Accept json
// @Produce json
// @Param payload body domain.CorrectInput true "Text to correct"
// @Success 200 {object} domain.Run "ok"
// @Router /corrections/correct [post]
func (h *handlers) correct(r *stdhttp.Request, in domain.CorrectInput) (any, error) {
	return h.svc.Correct(r.Context(), in)
}

// swagger:route POST /corrections/runs Corrections correctionsRuns
// @Summary Recent persisted runs
// @Tags Corrections
// @Accept json
// @Produce json
// @Param payload body domain.RunsInput true "Query"
// @Success 200 {array} domain.RunSummary "ok"
// @Router /corrections/runs [post]
func (h *handlers) recent(r *stdhttp.Request, in domain.RunsInput) (any, error) {
	return h.svc.Recent(r.Context(), in)
}

// swagger:route GET /corrections/runs/{id} Corrections correctionsRun
// @Summary Fetch a persisted run with its edit trail
// @Tags Corrections
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} domain.Run "ok"
// @Router /corrections/runs/{id} [get]
func (h *handlers) run(r *stdhttp.Request) (any, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "run id is required")
	}
	return h.svc.GetRun(r.Context(), id)
}

// swagger:route GET /corrections/stages Corrections correctionsStages
// @Summary Pipeline stages in execution order
// @Tags Corrections
// @Produce json
// @Success 200 {array} string "ok"
// @Router /corrections/stages [get]
func (h *handlers) stages(_ *stdhttp.Request) (any, error) {
	return h.svc.StageNames(), nil
}
