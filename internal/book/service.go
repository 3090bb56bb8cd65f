package book

import (
	"context"

	"bookclub/internal/apperr"
	"bookclub/internal/platform/sanitize"
	"bookclub/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a manually entered book.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return Book{}, err
	}

	b := Book{
		Title:           sanitize.Text(in.Title),
		Author:          sanitize.Text(in.Author),
		Genre:           sanitize.OptionalText(in.Genre),
		PublicationDate: in.PublicationDate,
		Description:     sanitize.OptionalText(in.Description),
		CoverImageURL:   in.CoverImageURL,
		ISBN10:          in.ISBN10,
		ISBN13:          in.ISBN13,
		PageCount:       in.PageCount,
		Publisher:       sanitize.OptionalText(in.Publisher),
	}
	if b.Title == "" {
		return Book{}, apperr.Invalid("title", "title is required")
	}
	if b.Author == "" {
		return Book{}, apperr.Invalid("author", "author is required")
	}

	created, err := s.repo.Insert(ctx, b)
	if err != nil {
		return Book{}, err
	}
	return created.WithDisplayCover(), nil
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	return b.WithDisplayCover(), nil
}

// List returns one page of books, newest first.
func (s *Service) List(ctx context.Context, limit int, cursor string) (Page, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	after, err := DecodeCursor(cursor)
	if err != nil {
		return Page{}, apperr.Invalid("cursor", "cursor is invalid")
	}

	books, err := s.repo.List(ctx, ListQuery{Limit: limit + 1, After: after})
	if err != nil {
		return Page{}, err
	}

	page := Page{Books: make([]Book, 0, min(len(books), limit))}
	for i, b := range books {
		if i == limit {
			page.NextCursor = EncodeCursor(CursorAfter(books[limit-1]))
			break
		}
		page.Books = append(page.Books, b.WithDisplayCover())
	}
	return page, nil
}
