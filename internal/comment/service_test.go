package comment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testPostID    = "3c2b1a09-8f7e-4d6c-9b5a-4e3d2c1b0a99"
	testCommentID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Comment), args.Error(1)
}

func (m *mockRepo) Insert(ctx context.Context, c Comment) (Comment, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(Comment), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) PostExists(ctx context.Context, postID string) (bool, error) {
	args := m.Called(ctx, postID)
	return args.Bool(0), args.Error(1)
}

func TestCreate_SanitizesAndStores(t *testing.T) {
	repo := new(mockRepo)
	want := Comment{PostID: testPostID, AuthorName: "stilgar", Content: "Agreed."}
	repo.On("Insert", mock.Anything, want).
		Return(Comment{ID: testCommentID, PostID: testPostID, AuthorName: "stilgar", Content: "Agreed.", CreatedAt: time.Now()}, nil)

	c, err := NewService(repo).Create(context.Background(), testPostID, CreateInput{
		AuthorName: " stilgar ",
		Content:    "<p>Agreed.</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, testCommentID, c.ID)
	repo.AssertExpectations(t)
}

func TestCreate_RequiresFields(t *testing.T) {
	svc := NewService(new(mockRepo))

	_, err := svc.Create(context.Background(), testPostID, CreateInput{AuthorName: "  ", Content: ""})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)

	_, err = svc.Create(context.Background(), testPostID, CreateInput{AuthorName: "a", Content: "<i></i>"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Fields[0].Field)
}

func TestList_UnknownPost(t *testing.T) {
	repo := new(mockRepo)
	repo.On("PostExists", mock.Anything, testPostID).Return(false, nil)

	_, err := NewService(repo).List(context.Background(), testPostID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	repo.AssertNotCalled(t, "ListByPost", mock.Anything, mock.Anything)
}

func TestHTTP_Comments(t *testing.T) {
	repo := new(mockRepo)
	repo.On("PostExists", mock.Anything, testPostID).Return(true, nil)
	repo.On("ListByPost", mock.Anything, testPostID).Return([]Comment{
		{ID: "1", PostID: testPostID, Content: "first"},
		{ID: "2", PostID: testPostID, Content: "second"},
	}, nil)
	repo.On("Insert", mock.Anything, mock.AnythingOfType("comment.Comment")).Return(Comment{}, ErrPostNotFound)
	repo.On("Delete", mock.Anything, testCommentID).Return(ErrNotFound)

	r := chi.NewRouter()
	NewHTTPHandler(NewService(repo)).Register(r)
	do := func(req *http.Request) testutil.RecordResponse {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return testutil.RecordHTTPResponse(w)
	}

	res := do(testutil.NewRequest(http.MethodGet, "/posts/"+testPostID+"/comments", nil))
	require.Equal(t, http.StatusOK, res.Code)
	items := res.List()
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0]["content"])

	res = do(testutil.NewRequest(http.MethodPost, "/posts/"+testPostID+"/comments", map[string]any{
		"author_name": "a", "content": "b",
	}))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(testutil.NewRequest(http.MethodDelete, "/comments/"+testCommentID, nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}
