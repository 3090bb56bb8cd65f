package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPersistence(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Persistence("insert book", nil))
	})

	t.Run("wraps cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Persistence("insert book", cause)

		var pe *PersistenceError
		assert.True(t, errors.As(err, &pe))
		assert.Equal(t, "insert book", pe.Op)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrConflict)
		assert.Equal(t, "insert book: connection reset", err.Error())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		cause := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})
		err := Persistence("insert book", cause)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "title", Message: "title is required"},
		{Field: "isbn10", Message: "isbn10 must be exactly 10 characters"},
	}}
	assert.Equal(t, "validation failed: title: title is required; isbn10: isbn10 must be exactly 10 characters", err.Error())

	single := Invalid("rating", "rating is required for reviews")
	assert.Len(t, single.Fields, 1)
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
