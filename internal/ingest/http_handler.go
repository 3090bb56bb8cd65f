package ingest

import (
	"net/http"

	"bookclub/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	svc    *Service
	secret string
}

func NewHTTPHandler(svc *Service, secret string) *HTTPHandler {
	return &HTTPHandler{svc: svc, secret: secret}
}

// Register mounts the operator routes behind the internal secret.
func (h *HTTPHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httpx.RequireInternalSecret(h.secret))
		r.Post("/internal/jobs/ingest", h.Ingest)
		r.Get("/internal/jobs/ingest", h.Runs)
	})
}

type ingestRequest struct {
	Queries []string `json:"queries"`
}

// Ingest handles POST /internal/jobs/ingest
// @Summary Trigger catalog ingestion
// @Description Import Google Books search results into the local catalog. The body is optional; queries default to INGEST_QUERIES
// @Tags internal
// @Accept json
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Param request body ingestRequest false "Queries to import"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [post]
func (h *HTTPHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if r.ContentLength != 0 {
		if !httpx.DecodeJSON(w, r, &req) {
			return
		}
	}

	run, err := h.svc.Run(r.Context(), req.Queries...)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}

// Runs handles GET /internal/jobs/ingest
// @Summary Recent ingest runs
// @Tags internal
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Param limit query int false "How many runs (max 50)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [get]
func (h *HTTPHandler) Runs(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.Recent(r.Context(), httpx.QueryInt(r, "limit", 10))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, runs, map[string]any{"count": len(runs)})
}
