package readinglist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/platform/googlebooks"
)

var (
	ErrNotFound      = fmt.Errorf("reading list %w", apperr.ErrNotFound)
	ErrItemNotFound  = fmt.Errorf("reading list item %w", apperr.ErrNotFound)
	ErrAlreadyInList = fmt.Errorf("%w: book is already in this reading list", apperr.ErrConflict)
)

// ReadingList is a named, user-curated collection of books.
type ReadingList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
	Items       []Item    `json:"items"`
}

// Item places a book on a list. A book is on a list at most once.
type Item struct {
	ID      string      `json:"id"`
	BookID  string      `json:"book_id"`
	Book    BookSummary `json:"book"`
	AddedAt time.Time   `json:"added_at"`
}

type BookSummary struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Genre           *string `json:"genre,omitempty"`
	PublicationDate *string `json:"publication_date,omitempty"`
	Description     *string `json:"description,omitempty"`
	CoverImageURL   *string `json:"cover_image_url"`
	GoogleBooksID   *string `json:"google_books_id,omitempty"`
	ISBN13          *string `json:"isbn13,omitempty"`
	DisplayCoverURL string  `json:"display_cover_url"`
}

type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	AuthorName  string  `json:"author_name" validate:"required,max=100"`
}

func (in CreateInput) normalize() CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		if v == "" {
			in.Description = nil
		} else {
			in.Description = &v
		}
	}
	return in
}

// AddItemInput names the book to add, either a stored book or a catalog entry.
type AddItemInput struct {
	BookID      *string           `json:"book_id" validate:"omitempty,uuid"`
	CatalogBook *googlebooks.Book `json:"catalog_book"`
}

type Repository interface {
	Create(ctx context.Context, l ReadingList) (ReadingList, error)
	// List returns lists newest first, each with its items.
	List(ctx context.Context, limit int) ([]ReadingList, error)
	Get(ctx context.Context, id string) (ReadingList, error)
	Delete(ctx context.Context, id string) error
	HasBook(ctx context.Context, listID, bookID string) (bool, error)
	// AddItem fails with ErrAlreadyInList when the book is on the list.
	AddItem(ctx context.Context, listID, bookID string) (Item, error)
	RemoveItem(ctx context.Context, listID, bookID string) error
}

type BookFinder interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
}

type BookResolver interface {
	FindOrCreate(ctx context.Context, cb googlebooks.Book) (book.Book, bool, error)
}
