package post

import (
	"context"

	"bookclub/internal/book"
	"bookclub/internal/capability"
	"bookclub/internal/platform/googlebooks"
)

type Repository interface {
	Insert(ctx context.Context, p Post) (Post, error)
	// GetByID returns the post joined with its book summary.
	GetByID(ctx context.Context, id string) (Post, error)
	List(ctx context.Context, q ListQuery) ([]Post, error)
	Update(ctx context.Context, id string, c Changes) (Post, error)
	Delete(ctx context.Context, id string) error
	// IncrementUpvotes adds one vote atomically and returns the new count.
	IncrementUpvotes(ctx context.Context, id string) (int, error)
	SecretHash(ctx context.Context, id string) (string, error)
}

// Authorizer decides whether a bearer of token may modify post postID.
type Authorizer interface {
	Authorize(ctx context.Context, token, postID string) error
}

// Issuer hands out write capabilities once the secret key checked out.
type Issuer interface {
	Issue(postID string) (capability.Grant, error)
}

type BookFinder interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
}

type BookResolver interface {
	FindOrCreate(ctx context.Context, cb googlebooks.Book) (book.Book, bool, error)
}
