package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UUIDParam reads a UUID path parameter. A malformed id cannot name any row,
// so it is answered with 404 and ok=false.
func UUIDParam(w http.ResponseWriter, r *http.Request, name, resource string) (string, bool) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", resource+" not found", nil)
		return "", false
	}
	return id, true
}
