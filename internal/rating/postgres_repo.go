package rating

import (
	"context"
	"errors"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/book"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (repo *PostgresRepo) GetBookRating(ctx context.Context, bookID string) (BookRating, error) {
	query := `
		SELECT b.google_rating, b.google_ratings_count,
		       COALESCE(AVG(p.rating)::FLOAT, 0), COUNT(p.rating),
		       COUNT(*) FILTER (WHERE p.rating = 1),
		       COUNT(*) FILTER (WHERE p.rating = 2),
		       COUNT(*) FILTER (WHERE p.rating = 3),
		       COUNT(*) FILTER (WHERE p.rating = 4),
		       COUNT(*) FILTER (WHERE p.rating = 5)
		FROM books b
		LEFT JOIN posts p ON p.book_id = b.id AND p.type = 'review'
		WHERE b.id = $1
		GROUP BY b.id
	`
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	r := BookRating{BookID: bookID}
	var stars [5]int
	err := repo.db.QueryRow(ctx, query, bookID).Scan(
		&r.GoogleRating, &r.GoogleRatingsCount,
		&r.AverageRating, &r.ReviewCount,
		&stars[0], &stars[1], &stars[2], &stars[3], &stars[4],
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BookRating{}, book.ErrNotFound
		}
		return BookRating{}, apperr.Persistence("get book rating", err)
	}
	r.Distribution = make(map[int]int, len(stars))
	for i, n := range stars {
		r.Distribution[i+1] = n
	}
	return r, nil
}
