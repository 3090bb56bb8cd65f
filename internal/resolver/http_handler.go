package resolver

import (
	"net/http"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/httpx"
	"bookclub/internal/platform/googlebooks"

	"github.com/go-chi/chi/v5"
)

const maxCatalogLimit = 40

type HTTPHandler struct {
	resolver *Resolver
}

func NewHTTPHandler(resolver *Resolver) *HTTPHandler {
	return &HTTPHandler{resolver: resolver}
}

// Register mounts the search and resolution routes. They must be registered
// on the same router as the book routes; chi prefers the static segments.
func (h *HTTPHandler) Register(r chi.Router) {
	r.Get("/books/search", h.Search)
	r.Get("/books/catalog", h.SearchCatalog)
	r.Get("/books/catalog/{volumeID}", h.Volume)
	r.Post("/books/resolve", h.Resolve)
	r.Get("/books/{id}/similar", h.Similar)
}

// Search handles GET /books/search
// @Summary Search local books and the catalog
// @Description Local matches first, then catalog matches not already stored
// @Tags books
// @Produce json
// @Param q query string true "Title or author"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.resolver.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, results, map[string]any{"count": len(results)})
}

// SearchCatalog handles GET /books/catalog
// @Summary Search the catalog only
// @Tags books
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "Max results (max 40)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books/catalog [get]
func (h *HTTPHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", 0)
	if limit > maxCatalogLimit {
		limit = maxCatalogLimit
	}

	books, err := h.resolver.SearchCatalog(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// Volume handles GET /books/catalog/{volumeID}
// @Summary Catalog volume details
// @Tags books
// @Produce json
// @Param volumeID path string true "Catalog volume id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books/catalog/{volumeID} [get]
func (h *HTTPHandler) Volume(w http.ResponseWriter, r *http.Request) {
	cb, err := h.resolver.Volume(r.Context(), chi.URLParam(r, "volumeID"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, cb, nil)
}

// ResolveRequest names a catalog book either in full or by id alone.
type ResolveRequest struct {
	GoogleBooksID string            `json:"google_books_id"`
	CatalogBook   *googlebooks.Book `json:"catalog_book"`
}

// Resolve handles POST /books/resolve
// @Summary Find or create the local book for a catalog entry
// @Tags books
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Catalog book"
// @Success 200 {object} httpx.SuccessResponse "Already stored"
// @Success 201 {object} httpx.SuccessResponse "Created"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books/resolve [post]
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	var (
		b       book.Book
		created bool
		err     error
	)
	switch {
	case req.CatalogBook != nil:
		b, created, err = h.resolver.FindOrCreate(r.Context(), *req.CatalogBook)
	case req.GoogleBooksID != "":
		b, created, err = h.resolver.ResolveVolume(r.Context(), req.GoogleBooksID)
	default:
		err = apperr.Invalid("catalog_book", "catalog_book or google_books_id is required")
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if created {
		httpx.JSONCreated(w, r, b)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Similar handles GET /books/{id}/similar
// @Summary Catalog books similar to a local book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/similar [get]
func (h *HTTPHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDParam(w, r, "id", "book")
	if !ok {
		return
	}

	results, err := h.resolver.Similar(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, results, map[string]any{"count": len(results)})
}
