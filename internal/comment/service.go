package comment

import (
	"context"

	"bookclub/internal/apperr"
	"bookclub/internal/platform/sanitize"
	"bookclub/internal/validation"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a post's comments, oldest first.
func (s *Service) List(ctx context.Context, postID string) ([]Comment, error) {
	exists, err := s.repo.PostExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPostNotFound
	}
	return s.repo.ListByPost(ctx, postID)
}

func (s *Service) Create(ctx context.Context, postID string, in CreateInput) (Comment, error) {
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return Comment{}, err
	}

	c := Comment{
		PostID:     postID,
		AuthorName: sanitize.Text(in.AuthorName),
		Content:    sanitize.Text(in.Content),
	}
	if c.AuthorName == "" {
		return Comment{}, apperr.Invalid("author_name", "author_name is required")
	}
	if c.Content == "" {
		return Comment{}, apperr.Invalid("content", "content is required")
	}
	return s.repo.Insert(ctx, c)
}

// Delete removes a comment. Comments carry no credential, so anyone may
// delete one.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
