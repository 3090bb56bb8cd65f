package rating

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
	r.Get("/books/{id}/rating", h.GetRating)
}

// GetRating handles GET /books/{id}/rating
// @Summary Get book rating
// @Description Average and count of review ratings, plus the catalog rating
// @Tags ratings
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{id}/rating [get]
func (h *HTTPHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "book")
	if !ok {
		return
	}

	rating, err := h.service.GetBookRating(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rating, nil)
}
