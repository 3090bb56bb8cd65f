package post

import (
	"net/http"
	"strings"

	"bookclub/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(r chi.Router) {
	r.Get("/posts", h.List)
	r.Post("/posts", h.Create)
	r.Get("/posts/{id}", h.Get)
	r.Patch("/posts/{id}", h.Update)
	r.Delete("/posts/{id}", h.Delete)
	r.Post("/posts/{id}/upvote", h.Upvote)
	r.Post("/posts/{id}/capability", h.GrantCapability)
}

// List handles GET /posts
// @Summary List posts
// @Tags posts
// @Produce json
// @Param sort query string false "created_at (default) or upvotes"
// @Param q query string false "Title substring"
// @Param limit query int false "Max posts (max 100)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /posts [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context(), ListQuery{
		Sort:   r.URL.Query().Get("sort"),
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  httpx.QueryInt(r, "limit", defaultPageSize),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, posts, map[string]any{"count": len(posts)})
}

// Create handles POST /posts
// @Summary Create a review or discussion
// @Description The response carries the secret key needed to edit or delete the post later
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreateInput true "Post"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /posts [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, created)
}

// Get handles GET /posts/{id}
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// Update handles PATCH /posts/{id}
// @Summary Edit a post
// @Tags posts
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Post ID"
// @Param request body UpdateInput true "Changes"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}
	var in UpdateInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	p, err := h.service.Update(r.Context(), id, httpx.BearerToken(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// Delete handles DELETE /posts/{id}
// @Summary Delete a post
// @Tags posts
// @Security Bearer
// @Param id path string true "Post ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, httpx.BearerToken(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// Upvote handles POST /posts/{id}/upvote
// @Summary Upvote a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id}/upvote [post]
func (h *HTTPHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}

	upvotes, err := h.service.Upvote(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"id": id, "upvotes": upvotes}, nil)
}

type capabilityReq struct {
	SecretKey string `json:"secret_key"`
}

// GrantCapability handles POST /posts/{id}/capability
// @Summary Exchange the secret key for an edit token
// @Description Returns a short-lived bearer token valid for PATCH and DELETE on this post only
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body capabilityReq true "Secret key"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id}/capability [post]
func (h *HTTPHandler) GrantCapability(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}
	var req capabilityReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	grant, err := h.service.GrantCapability(r.Context(), id, strings.TrimSpace(req.SecretKey))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, grant, nil)
}
