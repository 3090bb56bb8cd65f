// Package testutil holds fixtures and fakes shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/capability"
	"bookclub/internal/platform/googlebooks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// CapabilitySecret signs capability tokens in handler tests.
const CapabilitySecret = "test-capability-secret-0123456789"

// TestBook returns a stored book fixture.
func TestBook() book.Book {
	gid := "B1hSG45JCX4C"
	genre := "Fiction"
	return book.Book{
		ID:            "6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b",
		Title:         "Dune",
		Author:        "Frank Herbert",
		Genre:         &genre,
		GoogleBooksID: &gid,
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// CatalogBook returns a normalized catalog entry fixture.
func CatalogBook(googleBooksID, title string) googlebooks.Book {
	thumb := "https://books.google.com/books/content?id=" + googleBooksID
	date := "1965-08-01"
	return googlebooks.Book{
		GoogleBooksID: googleBooksID,
		Title:         title,
		Authors:       []string{"Frank Herbert"},
		Author:        "Frank Herbert",
		Genre:         "Fiction",
		PublishedDate: &date,
		Thumbnail:     &thumb,
		CoverImageURL: &thumb,
	}
}

// BookStore is an in-memory book.Repository. Like the real table it rejects a
// second row with the same google_books_id.
type BookStore struct {
	mu      sync.Mutex
	books   []book.Book
	Inserts int
}

func NewBookStore(seed ...book.Book) *BookStore {
	return &BookStore{books: append([]book.Book(nil), seed...)}
}

func (s *BookStore) FindByExternalID(_ context.Context, googleBooksID string) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.GoogleBooksID != nil && *b.GoogleBooksID == googleBooksID {
			return b, nil
		}
	}
	return book.Book{}, book.ErrNotFound
}

func (s *BookStore) SearchByTitleOrAuthor(_ context.Context, query string, limit int) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []book.Book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *BookStore) Insert(_ context.Context, b book.Book) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.GoogleBooksID != nil {
		for _, existing := range s.books {
			if existing.GoogleBooksID != nil && *existing.GoogleBooksID == *b.GoogleBooksID {
				return book.Book{}, apperr.Persistence("insert book", &pgconn.PgError{
					Code:           "23505",
					ConstraintName: "books_google_books_id_key",
				})
			}
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	s.books = append(s.books, b)
	s.Inserts++
	return b, nil
}

func (s *BookStore) GetByID(_ context.Context, id string) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, nil
		}
	}
	return book.Book{}, book.ErrNotFound
}

func (s *BookStore) List(_ context.Context, q book.ListQuery) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]book.Book, len(s.books))
	for i := range s.books {
		out[len(s.books)-1-i] = s.books[i]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Len returns how many books are stored.
func (s *BookStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// IssueCapability returns a post:write token signed with CapabilitySecret.
func IssueCapability(postID string) string {
	grant, err := capability.NewService(CapabilitySecret, time.Hour).Issue(postID)
	if err != nil {
		panic(err)
	}
	return grant.Token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body any) *http.Request {
	var r *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithToken creates a new HTTP request carrying a bearer token
func NewRequestWithToken(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse is a decoded response envelope.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// Data returns the envelope's data member as an object.
func (r RecordResponse) Data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

// List returns the envelope's data member as an array of objects.
func (r RecordResponse) List() []map[string]any {
	raw, _ := r.Body["data"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// ErrorCode returns error.code of an error envelope.
func (r RecordResponse) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}
