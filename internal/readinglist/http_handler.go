package readinglist

import (
	"log/slog"
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
	r.Get("/reading-lists", h.List)
	r.Post("/reading-lists", h.Create)
	r.Get("/reading-lists/{id}", h.Get)
	r.Delete("/reading-lists/{id}", h.Delete)
	r.Post("/reading-lists/{id}/items", h.AddItem)
	r.Delete("/reading-lists/{id}/items/{bookID}", h.RemoveItem)
	r.Get("/reading-lists/{id}/opds", h.OPDS)
}

// List handles GET /reading-lists
// @Summary List reading lists
// @Tags reading-lists
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /reading-lists [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, lists, map[string]any{"count": len(lists)})
}

// Create handles POST /reading-lists
// @Summary Create a reading list
// @Tags reading-lists
// @Accept json
// @Produce json
// @Param request body CreateInput true "Reading list"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /reading-lists [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	l, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, l)
}

// Get handles GET /reading-lists/{id}
// @Summary Get a reading list with its books
// @Tags reading-lists
// @Produce json
// @Param id path string true "Reading list ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reading-lists/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "reading list")
	if !ok {
		return
	}

	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, l, nil)
}

// Delete handles DELETE /reading-lists/{id}
// @Summary Delete a reading list
// @Tags reading-lists
// @Param id path string true "Reading list ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reading-lists/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "reading list")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// AddItem handles POST /reading-lists/{id}/items
// @Summary Add a book to a reading list
// @Description Either book_id of a stored book or a catalog_book from search results
// @Tags reading-lists
// @Accept json
// @Produce json
// @Param id path string true "Reading list ID"
// @Param request body AddItemInput true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /reading-lists/{id}/items [post]
func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "reading list")
	if !ok {
		return
	}
	var in AddItemInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	it, err := h.service.Add(r.Context(), id, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, it)
}

// RemoveItem handles DELETE /reading-lists/{id}/items/{bookID}
// @Summary Remove a book from a reading list
// @Tags reading-lists
// @Param id path string true "Reading list ID"
// @Param bookID path string true "Book ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reading-lists/{id}/items/{bookID} [delete]
func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "reading list")
	if !ok {
		return
	}
	bookID, ok := httpx.UUIDParam(w, r, "bookID", "reading list item")
	if !ok {
		return
	}

	if err := h.service.RemoveBook(r.Context(), id, bookID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// OPDS handles GET /reading-lists/{id}/opds
// @Summary Reading list as an OPDS 1 acquisition feed
// @Tags reading-lists
// @Produce xml
// @Param id path string true "Reading list ID"
// @Success 200 {string} string "Atom feed"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reading-lists/{id}/opds [get]
func (h *HTTPHandler) OPDS(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "reading list")
	if !ok {
		return
	}

	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", AcquisitionFeedType)
	w.WriteHeader(http.StatusOK)
	if err := WriteFeed(w, Feed(l, r.URL.Path)); err != nil {
		slog.ErrorContext(r.Context(), "write opds feed", "reading_list_id", id, "error", err)
	}
}
