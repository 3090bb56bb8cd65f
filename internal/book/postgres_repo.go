package book

import (
	"context"
	"strings"
	"time"

	"bookclub/internal/apperr"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "books"

var dialect = goqu.Dialect("postgres")

// Columns lists the selectable book columns; other packages use it when
// joining books.
var Columns = []any{
	"id", "title", "author", "genre", "publication_date", "description",
	"cover_image_url", "google_books_id", "isbn10", "isbn13", "page_count",
	"publisher", "google_rating", "google_ratings_count", "created_at",
}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func selectBooks() *goqu.SelectDataset {
	return dialect.From(table).Select(Columns...).Prepared(true)
}

func findByExternalIDQuery(googleBooksID string) (string, []any, error) {
	return selectBooks().Where(goqu.C("google_books_id").Eq(googleBooksID)).Limit(1).ToSQL()
}

func searchQuery(query string, limit int) (string, []any, error) {
	pattern := "%" + EscapeLike(query) + "%"
	return selectBooks().
		Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		)).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc()).
		Limit(uint(limit)).
		ToSQL()
}

func listQuery(q ListQuery) (string, []any, error) {
	ds := selectBooks().Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if q.After != nil {
		ds = ds.Where(goqu.L("(created_at, id) < (?, ?)", q.After.CreatedAt, q.After.AfterID))
	}
	return ds.Limit(uint(q.Limit)).ToSQL()
}

func insertQuery(b Book) (string, []any, error) {
	return dialect.Insert(table).Prepared(true).Rows(b).Returning(Columns...).ToSQL()
}

func (r *PostgresRepo) getOne(ctx context.Context, op, sql string, args []any) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b Book
	if err := pgxscan.Get(timeoutCtx, r.db, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Book{}, ErrNotFound
		}
		return Book{}, apperr.Persistence(op, err)
	}
	return b, nil
}

func (r *PostgresRepo) getMany(ctx context.Context, op, sql string, args []any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []Book
	if err := pgxscan.Select(timeoutCtx, r.db, &out, sql, args...); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return out, nil
}

func (r *PostgresRepo) FindByExternalID(ctx context.Context, googleBooksID string) (Book, error) {
	sql, args, err := findByExternalIDQuery(googleBooksID)
	if err != nil {
		return Book{}, err
	}
	return r.getOne(ctx, "find book by external id", sql, args)
}

func (r *PostgresRepo) SearchByTitleOrAuthor(ctx context.Context, query string, limit int) ([]Book, error) {
	sql, args, err := searchQuery(query, limit)
	if err != nil {
		return nil, err
	}
	return r.getMany(ctx, "search books", sql, args)
}

func (r *PostgresRepo) Insert(ctx context.Context, b Book) (Book, error) {
	sql, args, err := insertQuery(b)
	if err != nil {
		return Book{}, err
	}
	created, err := r.getOne(ctx, "insert book", sql, args)
	if err == ErrNotFound {
		return Book{}, apperr.Persistence("insert book", err)
	}
	return created, err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	sql, args, err := selectBooks().Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return Book{}, err
	}
	return r.getOne(ctx, "get book", sql, args)
}

func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]Book, error) {
	sql, args, err := listQuery(q)
	if err != nil {
		return nil, err
	}
	return r.getMany(ctx, "list books", sql, args)
}
