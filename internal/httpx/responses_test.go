package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookclub/internal/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_IncludesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-1"))

	JSONSuccess(w, r, map[string]string{"key": "value"}, map[string]any{"next_cursor": "abc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Meta    map[string]any    `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "value", resp.Data["key"])
	assert.Equal(t, "req-1", resp.Meta["request_id"])
	assert.Equal(t, "abc", resp.Meta["next_cursor"])
}

func TestJSONCreated(t *testing.T) {
	w := httptest.NewRecorder()
	JSONCreated(w, httptest.NewRequest(http.MethodPost, "/posts", nil), map[string]string{"id": "p1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"p1"}}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Invalid("title", "title is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", fmt.Errorf("post %w", apperr.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"catalog", fmt.Errorf("%w: status 503", apperr.ErrCatalogUnavailable), http.StatusBadGateway, "CATALOG_UNAVAILABLE"},
		{"unique violation", apperr.Persistence("insert book", &pgconn.PgError{Code: "23505"}), http.StatusConflict, "CONFLICT"},
		{"persistence", apperr.Persistence("insert book", errors.New("conn reset")), http.StatusInternalServerError, "PERSISTENCE_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	t.Run("validation details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, httptest.NewRequest(http.MethodPost, "/books", nil), &apperr.ValidationError{Fields: []apperr.FieldError{
			{Field: "title", Message: "title is required"},
			{Field: "author", Message: "author is required"},
		}})
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, []ErrorDetail{
			{Field: "title", Message: "title is required"},
			{Field: "author", Message: "author is required"},
		}, resp.Error.Details)
	})
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"title":"x","admin":true}`))
	assert.False(t, DecodeJSON(w, r, &dst))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/books/catalog?limit=7&bad=x", nil)
	assert.Equal(t, 7, QueryInt(r, "limit", 5))
	assert.Equal(t, 5, QueryInt(r, "bad", 5))
	assert.Equal(t, 5, QueryInt(r, "missing", 5))
}

func TestUUIDParam(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := UUIDParam(w, r, "id", "book")
		if !ok {
			return
		}
		JSONSuccess(w, r, id, nil)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/6f1c2d1e-7a51-4b8e-9a0e-2f2c4c1d9b11", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
