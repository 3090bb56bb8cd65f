package validation

import (
	"errors"
	"testing"

	"bookclub/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title     string  `json:"title" validate:"required"`
	Kind      string  `json:"kind" validate:"required,oneof=review discussion"`
	Rating    *int    `json:"rating" validate:"required_if=Kind review,omitempty,min=1,max=5"`
	ISBN10    *string `json:"isbn10" validate:"omitempty,len=10"`
	PageCount *int    `json:"page_count" validate:"omitempty,min=1"`
}

func ptr[T any](v T) *T { return &v }

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	out := map[string]string{}
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := Struct(sample{Title: "Dune", Kind: "review", Rating: ptr(5), ISBN10: ptr("0441172717"), PageCount: ptr(412)})
		assert.NoError(t, err)
	})

	t.Run("optional fields absent", func(t *testing.T) {
		assert.NoError(t, Struct(sample{Title: "Dune", Kind: "discussion"}))
	})

	t.Run("required and oneof", func(t *testing.T) {
		got := fields(t, Struct(sample{Kind: "essay"}))
		assert.Equal(t, "title is required", got["title"])
		assert.Equal(t, "kind must be one of: review, discussion", got["kind"])
	})

	t.Run("required_if", func(t *testing.T) {
		got := fields(t, Struct(sample{Title: "Dune", Kind: "review"}))
		assert.Equal(t, "rating is required when kind is review", got["rating"])
	})

	t.Run("numeric bounds", func(t *testing.T) {
		got := fields(t, Struct(sample{Title: "Dune", Kind: "review", Rating: ptr(6), PageCount: ptr(0)}))
		assert.Equal(t, "rating must be at most 5", got["rating"])
		assert.Equal(t, "page_count must be at least 1", got["page_count"])
	})

	t.Run("string length", func(t *testing.T) {
		got := fields(t, Struct(sample{Title: "Dune", Kind: "discussion", ISBN10: ptr("123")}))
		assert.Equal(t, "isbn10 must be exactly 10 characters", got["isbn10"])
	})
}
