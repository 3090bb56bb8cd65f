package post

import (
	"context"
	"errors"
	"fmt"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/capability"
	"bookclub/internal/platform/sanitize"
	"bookclub/internal/validation"
)

// ErrWrongSecret is returned when a capability is requested with a secret
// key that does not match the post's.
var ErrWrongSecret = fmt.Errorf("incorrect secret key: %w", apperr.ErrForbidden)

type Service struct {
	repo     Repository
	books    BookFinder
	resolver BookResolver
	auth     Authorizer
	issuer   Issuer
}

func NewService(repo Repository, books BookFinder, resolver BookResolver, auth Authorizer, issuer Issuer) *Service {
	return &Service{repo: repo, books: books, resolver: resolver, auth: auth, issuer: issuer}
}

// Create stores a new post and returns it together with the secret key that
// lets its author edit or delete it. A key is generated when none is given.
func (s *Service) Create(ctx context.Context, in CreateInput) (Created, error) {
	in = in.normalize()
	p := Post{
		BookID:     in.BookID,
		Title:      sanitize.Text(in.Title),
		Content:    sanitize.Text(in.Content),
		Type:       in.Type,
		Rating:     in.Rating,
		AuthorName: sanitize.Text(in.AuthorName),
	}
	// Nothing is written, the catalog book included, until the whole input
	// is known to be acceptable.
	if err := checkCreate(in, p); err != nil {
		return Created{}, err
	}

	var summary *BookSummary
	switch {
	case p.BookID != nil:
		b, err := s.books.GetByID(ctx, *p.BookID)
		if err != nil {
			if errors.Is(err, book.ErrNotFound) {
				return Created{}, apperr.Invalid("book_id", "book does not exist")
			}
			return Created{}, err
		}
		summary = summaryOf(b)
	case in.CatalogBook != nil:
		b, _, err := s.resolver.FindOrCreate(ctx, *in.CatalogBook)
		if err != nil {
			return Created{}, err
		}
		p.BookID = &b.ID
		summary = summaryOf(b)
	}

	secret := in.SecretKey
	if secret == "" {
		generated, err := capability.GenerateSecret()
		if err != nil {
			return Created{}, err
		}
		secret = generated
	}
	hash, err := capability.HashSecret(secret)
	if err != nil {
		return Created{}, err
	}
	p.SecretHash = hash

	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Created{}, err
	}
	created.Book = summary
	return Created{Post: created, SecretKey: secret}, nil
}

// checkCreate reports every rule the input breaks at once. Title and author
// are checked again after sanitizing since markup alone does not count.
func checkCreate(in CreateInput, p Post) error {
	ve := &apperr.ValidationError{}
	if err := validation.Struct(in); err != nil {
		if !errors.As(err, &ve) {
			return err
		}
	}

	flagged := func(field string) bool {
		for _, f := range ve.Fields {
			if f.Field == field {
				return true
			}
		}
		return false
	}
	add := func(field, msg string) {
		if !flagged(field) {
			ve.Fields = append(ve.Fields, apperr.FieldError{Field: field, Message: msg})
		}
	}

	if p.Title == "" {
		add("title", "title is required")
	}
	if p.AuthorName == "" {
		add("author_name", "author_name is required")
	}
	if in.Type == TypeReview && in.BookID == nil && in.CatalogBook == nil {
		add("book_id", "book_id or catalog_book is required when type is review")
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func summaryOf(b book.Book) *BookSummary {
	b = b.WithDisplayCover()
	return &BookSummary{
		Title:           b.Title,
		Author:          b.Author,
		CoverImageURL:   b.CoverImageURL,
		DisplayCoverURL: b.DisplayCoverURL,
	}
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns posts newest first, or most upvoted first, optionally
// filtered by a title substring.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Post, error) {
	switch q.Sort {
	case "":
		q.Sort = SortCreatedAt
	case SortCreatedAt, SortUpvotes:
	default:
		return nil, apperr.Invalid("sort", "sort must be one of: created_at, upvotes")
	}
	return s.repo.List(ctx, q)
}

// Update changes title, content or rating of a post the token covers. A
// rating can only be set on reviews.
func (s *Service) Update(ctx context.Context, id, token string, in UpdateInput) (Post, error) {
	if err := s.auth.Authorize(ctx, token, id); err != nil {
		return Post{}, err
	}

	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return Post{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if in.Rating != nil && current.Type != TypeReview {
		return Post{}, apperr.Invalid("rating", "rating must be empty when type is discussion")
	}

	c := Changes{Rating: in.Rating}
	if in.Title != nil {
		title := sanitize.Text(*in.Title)
		if title == "" {
			return Post{}, apperr.Invalid("title", "title is required")
		}
		c.Title = &title
	}
	if in.Content != nil {
		content := sanitize.Text(*in.Content)
		c.Content = &content
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id, token string) error {
	if err := s.auth.Authorize(ctx, token, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Upvote adds one vote and returns the new count.
func (s *Service) Upvote(ctx context.Context, id string) (int, error) {
	return s.repo.IncrementUpvotes(ctx, id)
}

// GrantCapability exchanges a post's secret key for a write capability.
func (s *Service) GrantCapability(ctx context.Context, id, secret string) (capability.Grant, error) {
	if secret == "" {
		return capability.Grant{}, apperr.Invalid("secret_key", "secret_key is required")
	}
	hash, err := s.repo.SecretHash(ctx, id)
	if err != nil {
		return capability.Grant{}, err
	}
	if !capability.CheckSecret(hash, secret) {
		return capability.Grant{}, ErrWrongSecret
	}
	return s.issuer.Issue(id)
}
