// Package resolver joins the local book store and the external catalog: it
// merges search results from both, preferring local records, and turns a
// catalog entry into exactly one local book.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/platform/googlebooks"
	"bookclub/internal/validation"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultLocalLimit   = 10
	DefaultCatalogLimit = 5
	similarLimit        = 10
)

// Source tells where a search result came from.
type Source string

const (
	SourceLocal   Source = "local"
	SourceCatalog Source = "catalog"
)

// Catalog is the external book catalog.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]googlebooks.Book, error)
	Volume(ctx context.Context, id string) (googlebooks.Book, error)
}

// Result is one merged search hit. Exactly one of Book and CatalogBook is set.
type Result struct {
	Source          Source            `json:"source"`
	Book            *book.Book        `json:"book,omitempty"`
	CatalogBook     *googlebooks.Book `json:"catalog_book,omitempty"`
	DisplayCoverURL string            `json:"display_cover_url"`
}

func localResult(b book.Book) Result {
	b = b.WithDisplayCover()
	return Result{Source: SourceLocal, Book: &b, DisplayCoverURL: b.DisplayCoverURL}
}

func catalogResult(cb googlebooks.Book) Result {
	return Result{
		Source:          SourceCatalog,
		CatalogBook:     &cb,
		DisplayCoverURL: book.ResolveCoverURL(cb.CoverImageURL, cb.Thumbnail, cb.SmallThumbnail, cb.Title),
	}
}

type Options struct {
	LocalLimit   int
	CatalogLimit int
}

type Resolver struct {
	books   book.Repository
	catalog Catalog
	logger  *slog.Logger
	opts    Options
}

func New(books book.Repository, catalog Catalog, logger *slog.Logger, opts Options) *Resolver {
	if opts.LocalLimit <= 0 {
		opts.LocalLimit = DefaultLocalLimit
	}
	if opts.CatalogLimit <= 0 {
		opts.CatalogLimit = DefaultCatalogLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{books: books, catalog: catalog, logger: logger, opts: opts}
}

// Search looks the query up locally and in the catalog at the same time.
// Local hits come first in store order, followed by catalog hits whose
// google_books_id no local hit carries. A failing catalog only costs the
// catalog half of the answer; a failing store fails the search.
func (r *Resolver) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	var (
		local      []book.Book
		catalog    []googlebooks.Book
		catalogErr error
	)

	// Not errgroup.WithContext: a catalog failure must not cancel the local leg.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		local, err = r.books.SearchByTitleOrAuthor(ctx, query, r.opts.LocalLimit)
		return err
	})
	g.Go(func() error {
		catalog, catalogErr = r.catalog.Search(ctx, query, r.opts.CatalogLimit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if catalogErr != nil {
		if errors.Is(catalogErr, context.Canceled) {
			return nil, catalogErr
		}
		r.logger.WarnContext(ctx, "catalog search failed, returning local results only",
			"query", query, "error", catalogErr)
		catalog = nil
	}

	return merge(local, catalog), nil
}

func merge(local []book.Book, catalog []googlebooks.Book) []Result {
	out := make([]Result, 0, len(local)+len(catalog))
	seen := make(map[string]struct{}, len(local))
	for _, b := range local {
		out = append(out, localResult(b))
		if b.GoogleBooksID != nil && *b.GoogleBooksID != "" {
			seen[*b.GoogleBooksID] = struct{}{}
		}
	}
	for _, cb := range catalog {
		if _, dup := seen[cb.GoogleBooksID]; dup {
			continue
		}
		out = append(out, catalogResult(cb))
	}
	return out
}

// SearchCatalog searches only the catalog. Unlike Search, catalog failures
// are returned to the caller.
func (r *Resolver) SearchCatalog(ctx context.Context, query string, limit int) ([]googlebooks.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []googlebooks.Book{}, nil
	}
	if limit <= 0 {
		limit = r.opts.CatalogLimit
	}
	return r.catalog.Search(ctx, query, limit)
}

// Volume fetches a single catalog entry.
func (r *Resolver) Volume(ctx context.Context, id string) (googlebooks.Book, error) {
	return r.catalog.Volume(ctx, id)
}

// FindOrCreate returns the local book for a catalog entry, inserting it the
// first time it is seen. An existing row is returned as is, without
// refreshing it from the catalog entry.
//
// Lookup and insert are separate statements. Two concurrent first calls for
// the same id race; the loser's insert hits the unique index on
// google_books_id and surfaces as a conflict.
func (r *Resolver) FindOrCreate(ctx context.Context, cb googlebooks.Book) (book.Book, bool, error) {
	if strings.TrimSpace(cb.GoogleBooksID) == "" {
		return book.Book{}, false, apperr.Invalid("google_books_id", "google_books_id is required")
	}

	existing, err := r.books.FindByExternalID(ctx, cb.GoogleBooksID)
	if err == nil {
		return existing.WithDisplayCover(), false, nil
	}
	if !errors.Is(err, book.ErrNotFound) {
		return book.Book{}, false, err
	}

	record := FromCatalog(cb)
	if err := validation.Struct(catalogRecordOf(record)); err != nil {
		return book.Book{}, false, err
	}
	created, err := r.books.Insert(ctx, record)
	if err != nil {
		return book.Book{}, false, err
	}
	r.logger.InfoContext(ctx, "book created from catalog",
		"book_id", created.ID, "google_books_id", cb.GoogleBooksID)
	return created.WithDisplayCover(), true, nil
}

// ResolveVolume is FindOrCreate for a bare catalog id: the catalog is only
// asked for the volume when no local book carries the id yet.
func (r *Resolver) ResolveVolume(ctx context.Context, googleBooksID string) (book.Book, bool, error) {
	googleBooksID = strings.TrimSpace(googleBooksID)
	if googleBooksID == "" {
		return book.Book{}, false, apperr.Invalid("google_books_id", "google_books_id is required")
	}

	existing, err := r.books.FindByExternalID(ctx, googleBooksID)
	if err == nil {
		return existing.WithDisplayCover(), false, nil
	}
	if !errors.Is(err, book.ErrNotFound) {
		return book.Book{}, false, err
	}

	cb, err := r.catalog.Volume(ctx, googleBooksID)
	if err != nil {
		return book.Book{}, false, err
	}
	return r.FindOrCreate(ctx, cb)
}

// Similar suggests catalog books related to a local one. The catalog is
// queried with the book's title and author; entries titled like the book
// itself are dropped. Catalog failures yield an empty list.
func (r *Resolver) Similar(ctx context.Context, bookID string) ([]Result, error) {
	b, err := r.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(b.Title + " " + b.Author)
	found, err := r.catalog.Search(ctx, query, similarLimit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		r.logger.WarnContext(ctx, "similar books lookup failed", "book_id", bookID, "error", err)
		return []Result{}, nil
	}

	out := make([]Result, 0, len(found))
	for _, cb := range found {
		if strings.EqualFold(cb.Title, b.Title) {
			continue
		}
		out = append(out, catalogResult(cb))
	}
	return out, nil
}

// FromCatalog maps a normalized catalog entry onto the store schema.
func FromCatalog(cb googlebooks.Book) book.Book {
	gid := cb.GoogleBooksID
	b := book.Book{
		Title:           cb.Title,
		Author:          cb.Author,
		PublicationDate: cb.PublishedDate,
		Description:     cb.Description,
		CoverImageURL:   firstPresent(cb.CoverImageURL, cb.Thumbnail, cb.SmallThumbnail),
		GoogleBooksID:   &gid,
		ISBN10:          cb.ISBN10,
		ISBN13:          cb.ISBN13,
		PageCount:       cb.PageCount,
		Publisher:       cb.Publisher,
		GoogleRating:    cb.AverageRating,
	}
	if b.Title == "" {
		b.Title = googlebooks.UnknownTitle
	}
	if b.Author == "" {
		b.Author = googlebooks.UnknownAuthor
	}
	genre := cb.Genre
	if genre == "" {
		genre = googlebooks.UnknownGenre
	}
	b.Genre = &genre
	count := cb.RatingsCount
	b.GoogleRatingsCount = &count
	return b
}

// catalogRecord holds the columns of a catalog-derived book that carry the
// same format rules as a manually entered one. Catalog entries reach
// FindOrCreate from request bodies too, not only from the catalog.
type catalogRecord struct {
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
	ISBN10        *string `json:"isbn10" validate:"omitempty,len=10"`
	ISBN13        *string `json:"isbn13" validate:"omitempty,len=13"`
	PageCount     *int    `json:"page_count" validate:"omitempty,min=1"`
}

func catalogRecordOf(b book.Book) catalogRecord {
	return catalogRecord{
		CoverImageURL: b.CoverImageURL,
		ISBN10:        b.ISBN10,
		ISBN13:        b.ISBN13,
		PageCount:     b.PageCount,
	}
}

func firstPresent(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
