package rating

import (
	"context"
	"math"
)

// BookRating combines the community reviews of a book with the rating the
// catalog reported when the book was stored.
type BookRating struct {
	BookID             string      `json:"book_id"`
	AverageRating      float64     `json:"average_rating"`
	ReviewCount        int         `json:"review_count"`
	Distribution       map[int]int `json:"distribution"`
	GoogleRating       *float64    `json:"google_rating"`
	GoogleRatingsCount *int        `json:"google_ratings_count"`
}

type Repository interface {
	// GetBookRating returns book.ErrNotFound for an unknown book.
	GetBookRating(ctx context.Context, bookID string) (BookRating, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetBookRating returns the average over the book's reviews, rounded to two
// decimals. A book without reviews averages 0.
func (s *Service) GetBookRating(ctx context.Context, bookID string) (BookRating, error) {
	r, err := s.repo.GetBookRating(ctx, bookID)
	if err != nil {
		return BookRating{}, err
	}
	r.AverageRating = math.Round(r.AverageRating*100) / 100
	if r.Distribution == nil {
		r.Distribution = map[int]int{}
	}
	for star := 1; star <= 5; star++ {
		if _, ok := r.Distribution[star]; !ok {
			r.Distribution[star] = 0
		}
	}
	return r, nil
}
