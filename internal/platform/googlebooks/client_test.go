package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookclub/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duneVolumes = `{
  "totalItems": 2,
  "items": [
    {
      "id": "B1hSG45JCX4C",
      "volumeInfo": {
        "title": "Dune",
        "authors": ["Frank Herbert"],
        "publisher": "Penguin",
        "publishedDate": "1965",
        "description": "Set on the desert planet Arrakis.",
        "industryIdentifiers": [
          {"type": "ISBN_13", "identifier": "9780441172719"},
          {"type": "ISBN_10", "identifier": "0441172717"}
        ],
        "pageCount": 412,
        "categories": ["Fiction", "Science Fiction"],
        "averageRating": 4.5,
        "ratingsCount": 120,
        "imageLinks": {"smallThumbnail": "http://img/small", "thumbnail": "http://img/thumb"},
        "language": "en"
      }
    },
    {
      "id": "xyz",
      "volumeInfo": {}
    }
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "", 2*time.Second, nil)
}

func TestClient_Search(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, duneVolumes)
	})

	books, err := c.Search(context.Background(), "dune herbert", 5)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, []string{"dune herbert"}, gotQuery["q"])
	assert.Equal(t, []string{"5"}, gotQuery["maxResults"])
	assert.Equal(t, []string{"books"}, gotQuery["printType"])
	_, hasKey := gotQuery["key"]
	assert.False(t, hasKey)

	dune := books[0]
	assert.Equal(t, "B1hSG45JCX4C", dune.GoogleBooksID)
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, "Frank Herbert", dune.Author)
	assert.Equal(t, "Fiction", dune.Genre)
	require.NotNil(t, dune.PublishedDate)
	assert.Equal(t, "1965-01-01", *dune.PublishedDate)
	assert.Equal(t, "0441172717", *dune.ISBN10)
	assert.Equal(t, "9780441172719", *dune.ISBN13)
	assert.Equal(t, 412, *dune.PageCount)
	assert.Equal(t, "http://img/thumb", *dune.CoverImageURL)
	assert.Equal(t, "http://img/small", *dune.SmallThumbnail)
	assert.Equal(t, 4.5, *dune.AverageRating)

	empty := books[1]
	assert.Equal(t, UnknownTitle, empty.Title)
	assert.Equal(t, []string{UnknownAuthor}, empty.Authors)
	assert.Equal(t, UnknownAuthor, empty.Author)
	assert.Equal(t, UnknownGenre, empty.Genre)
	assert.Nil(t, empty.PublishedDate)
	assert.Nil(t, empty.CoverImageURL)
	assert.Nil(t, empty.PageCount)
}

func TestClient_SearchSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"totalItems":0}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", time.Second, nil)
	books, err := c.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestClient_SearchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			})
			_, err := c.Search(context.Background(), "dune", 5)
			assert.ErrorIs(t, err, apperr.ErrCatalogUnavailable)
			assert.Equal(t, 1, calls, "requests must not be retried")
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()
		c := NewClient(srv.URL, "", time.Second, nil)
		_, err := c.Search(context.Background(), "dune", 5)
		assert.ErrorIs(t, err, apperr.ErrCatalogUnavailable)
	})
}

func TestClient_Volume(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volumes/B1hSG45JCX4C":
			fmt.Fprint(w, `{"id":"B1hSG45JCX4C","volumeInfo":{"title":"Dune","authors":["Frank Herbert","Brian Herbert"],"publishedDate":"2005-08"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	b, err := c.Volume(context.Background(), "B1hSG45JCX4C")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert, Brian Herbert", b.Author)
	assert.Equal(t, "2005-08-01", *b.PublishedDate)

	_, err = c.Volume(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, errors.Is(err, apperr.ErrCatalogUnavailable))
}
