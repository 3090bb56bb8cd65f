package post

import (
	"fmt"
	"strings"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/platform/googlebooks"
)

// ErrNotFound is returned when a post is not found.
var ErrNotFound = fmt.Errorf("post %w", apperr.ErrNotFound)

const (
	TypeReview     = "review"
	TypeDiscussion = "discussion"
)

// Sort orders for List.
const (
	SortCreatedAt = "created_at"
	SortUpvotes   = "upvotes"
)

// Post is a review or a discussion. Reviews always carry a rating and a
// book; discussions never carry a rating.
type Post struct {
	ID         string    `json:"id" db:"id" goqu:"skipinsert"`
	BookID     *string   `json:"book_id" db:"book_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	Type       string    `json:"type" db:"type"`
	Rating     *int      `json:"rating" db:"rating"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Upvotes    int       `json:"upvotes" db:"upvotes" goqu:"skipinsert"`
	SecretHash string    `json:"-" db:"secret_hash"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" goqu:"skipinsert"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at" goqu:"skipinsert"`

	Book *BookSummary `json:"book" db:"-"`
}

// BookSummary is the part of the referenced book shown alongside a post.
type BookSummary struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	CoverImageURL   *string `json:"cover_image_url"`
	DisplayCoverURL string  `json:"display_cover_url"`
}

// Created is returned once, on creation. SecretKey is never stored in clear
// and cannot be read back later.
type Created struct {
	Post
	SecretKey string `json:"secret_key"`
}

// CreateInput creates a post. A review names its book either by BookID or by
// a catalog entry, which is resolved to a local book first.
type CreateInput struct {
	Title       string            `json:"title" validate:"required,max=300"`
	Content     string            `json:"content" validate:"max=20000"`
	Type        string            `json:"type" validate:"required,oneof=review discussion"`
	BookID      *string           `json:"book_id" validate:"omitempty,uuid"`
	CatalogBook *googlebooks.Book `json:"catalog_book,omitempty"`
	Rating      *int              `json:"rating" validate:"required_if=Type review,excluded_if=Type discussion,omitempty,min=1,max=5"`
	AuthorName  string            `json:"author_name" validate:"required,max=100"`
	SecretKey   string            `json:"secret_key" validate:"omitempty,min=4,max=200"`
}

func (in CreateInput) normalize() CreateInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.SecretKey = strings.TrimSpace(in.SecretKey)
	if in.BookID != nil && strings.TrimSpace(*in.BookID) == "" {
		in.BookID = nil
	}
	return in
}

// UpdateInput changes a post. Absent fields keep their value.
type UpdateInput struct {
	Title   *string `json:"title" validate:"omitempty,max=300"`
	Content *string `json:"content" validate:"omitempty,max=20000"`
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (in UpdateInput) normalize() UpdateInput {
	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		in.Title = &v
	}
	if in.Content != nil {
		v := strings.TrimSpace(*in.Content)
		in.Content = &v
	}
	return in
}

// Changes is the set of columns an update writes.
type Changes struct {
	Title   *string
	Content *string
	Rating  *int
}

// ListQuery filters and orders List.
type ListQuery struct {
	Sort   string
	Search string
	Limit  int
}
