package comment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookclub/internal/apperr"
)

var (
	ErrNotFound     = fmt.Errorf("comment %w", apperr.ErrNotFound)
	ErrPostNotFound = fmt.Errorf("post %w", apperr.ErrNotFound)
)

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateInput struct {
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Content    string `json:"content" validate:"required,max=5000"`
}

func (in CreateInput) normalize() CreateInput {
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

type Repository interface {
	// ListByPost returns the comments of a post, oldest first.
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	// Insert fails with ErrPostNotFound when the post does not exist.
	Insert(ctx context.Context, c Comment) (Comment, error)
	Delete(ctx context.Context, id string) error
	PostExists(ctx context.Context, postID string) (bool, error)
}
