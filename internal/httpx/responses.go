package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bookclub/internal/apperr"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func buildMeta(r *http.Request, customMeta map[string]any) any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(customMeta) == 0 {
		return nil
	}
	meta := make(map[string]any, len(customMeta)+1)
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for k, v := range customMeta {
		meta[k] = v
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, meta),
	})
}

func JSONCreated(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, nil),
	})
}

func JSONNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []ErrorDetail) {
	writeJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}

// DecodeJSON reads the request body into dst. On failure it writes a 400 and
// returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return false
		}
		JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	return true
}

// QueryInt parses an integer query parameter, falling back to def when the
// value is missing or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// WriteError maps an application error onto the JSON error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError
	var perr *apperr.PersistenceError

	switch {
	case errors.As(err, &verr):
		details := make([]ErrorDetail, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = ErrorDetail{Field: f.Field, Message: f.Message}
		}
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, apperr.ErrForbidden):
		JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You are not allowed to modify this resource", nil)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, r, http.StatusConflict, "CONFLICT", conflictMessage(err), nil)
	case errors.Is(err, apperr.ErrCatalogUnavailable):
		slog.WarnContext(r.Context(), "catalog unavailable", "error", err)
		JSONError(w, r, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "Failed to search books. Please try again.", nil)
	case errors.As(err, &perr):
		slog.ErrorContext(r.Context(), "persistence failure", "op", perr.Op, "error", perr.Err)
		JSONError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to save changes", nil)
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// conflictMessage keeps store details out of the response for conflicts that
// came straight from a unique index.
func conflictMessage(err error) string {
	var perr *apperr.PersistenceError
	if errors.As(err, &perr) {
		return "Resource already exists"
	}
	return err.Error()
}
