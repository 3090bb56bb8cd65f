package comment

import (
	"net/http"

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
	r.Get("/posts/{id}/comments", h.List)
	r.Post("/posts/{id}/comments", h.Create)
	r.Delete("/comments/{id}", h.Delete)
}

// List handles GET /posts/{id}/comments
// @Summary List comments of a post
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id}/comments [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}

	comments, err := h.service.List(r.Context(), postID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, comments, map[string]any{"count": len(comments)})
}

// Create handles POST /posts/{id}/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body CreateInput true "Comment"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := httpx.UUIDParam(w, r, "id", "post")
	if !ok {
		return
	}
	var in CreateInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	c, err := h.service.Create(r.Context(), postID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, c)
}

// Delete handles DELETE /comments/{id}
// @Summary Delete a comment
// @Tags comments
// @Param id path string true "Comment ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /comments/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "comment")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
