package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository is the local store accessor for books.
type Repository interface {
	// FindByExternalID looks a book up by its catalog id. ErrNotFound when
	// absent.
	FindByExternalID(ctx context.Context, googleBooksID string) (Book, error)
	// SearchByTitleOrAuthor matches query as a case-insensitive substring of
	// the title or the author.
	SearchByTitleOrAuthor(ctx context.Context, query string, limit int) ([]Book, error)
	// Insert persists b and returns the stored row.
	Insert(ctx context.Context, b Book) (Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	List(ctx context.Context, q ListQuery) ([]Book, error)
}
