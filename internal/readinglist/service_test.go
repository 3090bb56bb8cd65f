package readinglist

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/book"
	"bookclub/internal/platform/googlebooks"
	"bookclub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo keeps lists in memory and joins items with books from a BookStore.
type memRepo struct {
	mu    sync.Mutex
	books *testutil.BookStore
	lists []ReadingList
}

func newMemRepo(books *testutil.BookStore) *memRepo {
	return &memRepo{books: books}
}

func (m *memRepo) find(id string) int {
	for i, l := range m.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (m *memRepo) Create(_ context.Context, l ReadingList) (ReadingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	l.Items = []Item{}
	m.lists = append(m.lists, l)
	return l, nil
}

func (m *memRepo) List(_ context.Context, limit int) ([]ReadingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ReadingList{}
	for i := len(m.lists) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.lists[i])
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id string) (ReadingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return ReadingList{}, ErrNotFound
	}
	return m.lists[i], nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return ErrNotFound
	}
	m.lists = append(m.lists[:i], m.lists[i+1:]...)
	return nil
}

func (m *memRepo) HasBook(_ context.Context, listID, bookID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(listID)
	if i < 0 {
		return false, nil
	}
	for _, it := range m.lists[i].Items {
		if it.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) AddItem(ctx context.Context, listID, bookID string) (Item, error) {
	if has, _ := m.HasBook(ctx, listID, bookID); has {
		return Item{}, ErrAlreadyInList
	}
	b, err := m.books.GetByID(ctx, bookID)
	if err != nil {
		return Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(listID)
	if i < 0 {
		return Item{}, ErrNotFound
	}
	it := Item{
		ID:      uuid.NewString(),
		BookID:  bookID,
		AddedAt: time.Now(),
		Book: BookSummary{
			Title: b.Title, Author: b.Author, Genre: b.Genre, CoverImageURL: b.CoverImageURL,
			GoogleBooksID: b.GoogleBooksID, DisplayCoverURL: b.WithDisplayCover().DisplayCoverURL,
		},
	}
	m.lists[i].Items = append(m.lists[i].Items, it)
	return it, nil
}

func (m *memRepo) RemoveItem(_ context.Context, listID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(listID)
	if i < 0 {
		return ErrItemNotFound
	}
	items := m.lists[i].Items
	for j, it := range items {
		if it.BookID == bookID {
			m.lists[i].Items = append(items[:j], items[j+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

type storeResolver struct {
	store *testutil.BookStore
}

func (r storeResolver) FindOrCreate(ctx context.Context, cb googlebooks.Book) (book.Book, bool, error) {
	if b, err := r.store.FindByExternalID(ctx, cb.GoogleBooksID); err == nil {
		return b, false, nil
	}
	gid := cb.GoogleBooksID
	b, err := r.store.Insert(ctx, book.Book{Title: cb.Title, Author: cb.Author, GoogleBooksID: &gid})
	return b, err == nil, err
}

func newTestService(books *testutil.BookStore) (*Service, *memRepo) {
	repo := newMemRepo(books)
	return NewService(repo, books, storeResolver{store: books}), repo
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(testutil.NewBookStore())

	l, err := svc.Create(context.Background(), CreateInput{
		Name: " Summer <em>reads</em> ", Description: strPtr("  "), AuthorName: "irulan",
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer reads", l.Name)
	assert.Nil(t, l.Description)
	assert.NotNil(t, l.Items)

	_, err = svc.Create(context.Background(), CreateInput{Name: "", AuthorName: ""})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}

func TestAddBook_OncePerList(t *testing.T) {
	dune := testutil.TestBook()
	svc, _ := newTestService(testutil.NewBookStore(dune))
	l, err := svc.Create(context.Background(), CreateInput{Name: "Sci-fi", AuthorName: "a"})
	require.NoError(t, err)

	it, err := svc.AddBook(context.Background(), l.ID, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", it.Book.Title)

	_, err = svc.AddBook(context.Background(), l.ID, dune.ID)
	assert.ErrorIs(t, err, ErrAlreadyInList)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := svc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestAddBook_Missing(t *testing.T) {
	svc, _ := newTestService(testutil.NewBookStore())
	l, err := svc.Create(context.Background(), CreateInput{Name: "n", AuthorName: "a"})
	require.NoError(t, err)

	_, err = svc.AddBook(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddBook(context.Background(), l.ID, uuid.NewString())
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAdd_CatalogBookResolvesOnce(t *testing.T) {
	store := testutil.NewBookStore()
	svc, _ := newTestService(store)
	first, err := svc.Create(context.Background(), CreateInput{Name: "one", AuthorName: "a"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateInput{Name: "two", AuthorName: "a"})
	require.NoError(t, err)

	cb := testutil.CatalogBook("ydQiDQAAQBAJ", "Dune Messiah")
	a, err := svc.Add(context.Background(), first.ID, AddItemInput{CatalogBook: &cb})
	require.NoError(t, err)
	b, err := svc.Add(context.Background(), second.ID, AddItemInput{CatalogBook: &cb})
	require.NoError(t, err)

	assert.Equal(t, a.BookID, b.BookID, "both lists reference the same stored book")
	assert.Equal(t, 1, store.Len())

	_, err = svc.Add(context.Background(), first.ID, AddItemInput{CatalogBook: &cb})
	assert.ErrorIs(t, err, ErrAlreadyInList)
}

func TestAdd_RequiresBook(t *testing.T) {
	svc, _ := newTestService(testutil.NewBookStore())

	_, err := svc.Add(context.Background(), uuid.NewString(), AddItemInput{})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "book_id", ve.Fields[0].Field)
}

func TestRemoveBook(t *testing.T) {
	dune := testutil.TestBook()
	svc, _ := newTestService(testutil.NewBookStore(dune))
	l, err := svc.Create(context.Background(), CreateInput{Name: "n", AuthorName: "a"})
	require.NoError(t, err)
	_, err = svc.AddBook(context.Background(), l.ID, dune.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveBook(context.Background(), l.ID, dune.ID))
	assert.ErrorIs(t, svc.RemoveBook(context.Background(), l.ID, dune.ID), ErrItemNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	svc, _ := newTestService(testutil.NewBookStore())
	_, err := svc.Create(context.Background(), CreateInput{Name: "older", AuthorName: "a"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{Name: "newer", AuthorName: "a"})
	require.NoError(t, err)

	lists, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "newer", lists[0].Name)
}

func strPtr(s string) *string { return &s }
