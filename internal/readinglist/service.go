package readinglist

import (
	"context"
	"errors"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/platform/googlebooks"
	"bookclub/internal/platform/sanitize"
	"bookclub/internal/validation"
)

const defaultListLimit = 50

type Service struct {
	repo     Repository
	books    BookFinder
	resolver BookResolver
}

func NewService(repo Repository, books BookFinder, resolver BookResolver) *Service {
	return &Service{repo: repo, books: books, resolver: resolver}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (ReadingList, error) {
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return ReadingList{}, err
	}

	l := ReadingList{
		Name:        sanitize.Text(in.Name),
		Description: sanitize.OptionalText(in.Description),
		AuthorName:  sanitize.Text(in.AuthorName),
	}
	if l.Name == "" {
		return ReadingList{}, apperr.Invalid("name", "name is required")
	}
	if l.AuthorName == "" {
		return ReadingList{}, apperr.Invalid("author_name", "author_name is required")
	}
	return s.repo.Create(ctx, l)
}

func (s *Service) List(ctx context.Context) ([]ReadingList, error) {
	return s.repo.List(ctx, defaultListLimit)
}

func (s *Service) Get(ctx context.Context, id string) (ReadingList, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Add puts the book named by in on a list, resolving a catalog entry to a
// local book first.
func (s *Service) Add(ctx context.Context, listID string, in AddItemInput) (Item, error) {
	if err := validation.Struct(in); err != nil {
		return Item{}, err
	}
	switch {
	case in.BookID != nil:
		return s.AddBook(ctx, listID, *in.BookID)
	case in.CatalogBook != nil:
		return s.AddCatalogBook(ctx, listID, *in.CatalogBook)
	default:
		return Item{}, apperr.Invalid("book_id", "book_id or catalog_book is required")
	}
}

// AddBook puts a stored book on a list. A book already on the list is
// rejected with ErrAlreadyInList.
func (s *Service) AddBook(ctx context.Context, listID, bookID string) (Item, error) {
	if _, err := s.repo.Get(ctx, listID); err != nil {
		return Item{}, err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			return Item{}, apperr.Invalid("book_id", "book does not exist")
		}
		return Item{}, err
	}

	exists, err := s.repo.HasBook(ctx, listID, bookID)
	if err != nil {
		return Item{}, err
	}
	if exists {
		return Item{}, ErrAlreadyInList
	}
	return s.repo.AddItem(ctx, listID, bookID)
}

// AddCatalogBook finds or creates the local book for a catalog entry and
// puts it on the list.
func (s *Service) AddCatalogBook(ctx context.Context, listID string, cb googlebooks.Book) (Item, error) {
	if _, err := s.repo.Get(ctx, listID); err != nil {
		return Item{}, err
	}
	b, _, err := s.resolver.FindOrCreate(ctx, cb)
	if err != nil {
		return Item{}, err
	}
	return s.AddBook(ctx, listID, b.ID)
}

func (s *Service) RemoveBook(ctx context.Context, listID, bookID string) error {
	return s.repo.RemoveItem(ctx, listID, bookID)
}
