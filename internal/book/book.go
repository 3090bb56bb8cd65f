package book

import (
	"fmt"
	"strings"
	"time"

	"bookclub/internal/apperr"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = fmt.Errorf("book %w", apperr.ErrNotFound)

// Book is the locally persisted book record. At most one row exists per
// GoogleBooksID; manually entered books have none.
type Book struct {
	ID                 string    `json:"id" db:"id" goqu:"skipinsert"`
	Title              string    `json:"title" db:"title"`
	Author             string    `json:"author" db:"author"`
	Genre              *string   `json:"genre" db:"genre"`
	PublicationDate    *string   `json:"publication_date" db:"publication_date"`
	Description        *string   `json:"description" db:"description"`
	CoverImageURL      *string   `json:"cover_image_url" db:"cover_image_url"`
	GoogleBooksID      *string   `json:"google_books_id" db:"google_books_id"`
	ISBN10             *string   `json:"isbn10" db:"isbn10"`
	ISBN13             *string   `json:"isbn13" db:"isbn13"`
	PageCount          *int      `json:"page_count" db:"page_count"`
	Publisher          *string   `json:"publisher" db:"publisher"`
	GoogleRating       *float64  `json:"google_rating" db:"google_rating"`
	GoogleRatingsCount *int      `json:"google_ratings_count" db:"google_ratings_count"`
	CreatedAt          time.Time `json:"created_at" db:"created_at" goqu:"skipinsert"`

	// DisplayCoverURL is always set on responses; it falls back to a
	// placeholder image when the book has no cover.
	DisplayCoverURL string `json:"display_cover_url" db:"-"`
}

// WithDisplayCover returns b with DisplayCoverURL resolved.
func (b Book) WithDisplayCover() Book {
	b.DisplayCoverURL = ResolveCoverURL(b.CoverImageURL, nil, nil, b.Title)
	return b
}

// ListQuery pages through books newest first.
type ListQuery struct {
	Limit int
	After *CursorData
}

// Page is one page of List results.
type Page struct {
	Books      []Book `json:"books"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// CreateInput is a manually entered book.
type CreateInput struct {
	Title           string  `json:"title" validate:"required,max=500"`
	Author          string  `json:"author" validate:"required,max=500"`
	Genre           *string `json:"genre" validate:"omitempty,max=100"`
	PublicationDate *string `json:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	Description     *string `json:"description" validate:"omitempty,max=10000"`
	CoverImageURL   *string `json:"cover_image_url" validate:"omitempty,url"`
	ISBN10          *string `json:"isbn10" validate:"omitempty,len=10"`
	ISBN13          *string `json:"isbn13" validate:"omitempty,len=13"`
	PageCount       *int    `json:"page_count" validate:"omitempty,min=1"`
	Publisher       *string `json:"publisher" validate:"omitempty,max=300"`
}

// normalize trims every text field and turns blank optional values into nil,
// mirroring how an empty form field is submitted.
func (in CreateInput) normalize() CreateInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	for _, f := range []**string{&in.Genre, &in.PublicationDate, &in.Description, &in.CoverImageURL, &in.ISBN10, &in.ISBN13, &in.Publisher} {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			*f = nil
		} else {
			*f = &v
		}
	}
	return in
}
