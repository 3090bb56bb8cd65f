package post

import (
	"context"
	"time"

	"bookclub/internal/apperr"
	"bookclub/internal/book"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table           = "posts"
	defaultPageSize = 50
	maxPageSize     = 100
)

var dialect = goqu.Dialect("postgres")

var postColumns = []string{
	"id", "book_id", "title", "content", "type", "rating", "author_name",
	"upvotes", "secret_hash", "created_at", "updated_at",
}

// postRow is a post with the nullable columns of its LEFT JOINed book.
type postRow struct {
	Post
	BookTitle         *string `db:"book_title"`
	BookAuthor        *string `db:"book_author"`
	BookCoverImageURL *string `db:"book_cover_image_url"`
}

func (r postRow) toPost() Post {
	p := r.Post
	if r.BookTitle != nil {
		s := BookSummary{Title: *r.BookTitle, CoverImageURL: r.BookCoverImageURL}
		if r.BookAuthor != nil {
			s.Author = *r.BookAuthor
		}
		s.DisplayCoverURL = book.ResolveCoverURL(s.CoverImageURL, nil, nil, s.Title)
		p.Book = &s
	}
	return p
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

func selectPosts() *goqu.SelectDataset {
	cols := make([]any, 0, len(postColumns)+3)
	for _, c := range postColumns {
		cols = append(cols, goqu.T("p").Col(c))
	}
	cols = append(cols,
		goqu.T("b").Col("title").As("book_title"),
		goqu.T("b").Col("author").As("book_author"),
		goqu.T("b").Col("cover_image_url").As("book_cover_image_url"),
	)
	return dialect.From(goqu.T(table).As("p")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.T("b").Col("id").Eq(goqu.T("p").Col("book_id")))).
		Select(cols...).
		Prepared(true)
}

func getQuery(id string) (string, []any, error) {
	return selectPosts().Where(goqu.T("p").Col("id").Eq(id)).ToSQL()
}

func listQuery(q ListQuery) (string, []any, error) {
	ds := selectPosts()
	if q.Search != "" {
		ds = ds.Where(goqu.T("p").Col("title").ILike("%" + book.EscapeLike(q.Search) + "%"))
	}
	if q.Sort == SortUpvotes {
		ds = ds.Order(goqu.T("p").Col("upvotes").Desc())
	}
	limit := q.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return ds.OrderAppend(
		goqu.T("p").Col("created_at").Desc(),
		goqu.T("p").Col("id").Desc(),
	).Limit(uint(limit)).ToSQL()
}

func insertQuery(p Post) (string, []any, error) {
	cols := make([]any, len(postColumns))
	for i, c := range postColumns {
		cols[i] = c
	}
	return dialect.Insert(table).Prepared(true).Rows(p).Returning(cols...).ToSQL()
}

func updateQuery(id string, c Changes) (string, []any, error) {
	rec := goqu.Record{"updated_at": goqu.L("now()")}
	if c.Title != nil {
		rec["title"] = *c.Title
	}
	if c.Content != nil {
		rec["content"] = *c.Content
	}
	if c.Rating != nil {
		rec["rating"] = *c.Rating
	}
	return dialect.Update(table).Prepared(true).Set(rec).
		Where(goqu.C("id").Eq(id)).Returning("id").ToSQL()
}

func upvoteQuery(id string) (string, []any, error) {
	return dialect.Update(table).Prepared(true).
		Set(goqu.Record{"upvotes": goqu.L("upvotes + 1")}).
		Where(goqu.C("id").Eq(id)).
		Returning("upvotes").ToSQL()
}

func (r *PostgresRepo) Insert(ctx context.Context, p Post) (Post, error) {
	sql, args, err := insertQuery(p)
	if err != nil {
		return Post{}, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var created Post
	if err := pgxscan.Get(ctx, r.db, &created, sql, args...); err != nil {
		return Post{}, apperr.Persistence("insert post", err)
	}
	return created, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Post, error) {
	sql, args, err := getQuery(id)
	if err != nil {
		return Post{}, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var row postRow
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Post{}, ErrNotFound
		}
		return Post{}, apperr.Persistence("get post", err)
	}
	return row.toPost(), nil
}

func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]Post, error) {
	sql, args, err := listQuery(q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []postRow
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, apperr.Persistence("list posts", err)
	}
	out := make([]Post, len(rows))
	for i, row := range rows {
		out[i] = row.toPost()
	}
	return out, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, c Changes) (Post, error) {
	sql, args, err := updateQuery(id, c)
	if err != nil {
		return Post{}, err
	}
	tctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var updatedID string
	if err := pgxscan.Get(tctx, r.db, &updatedID, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Post{}, ErrNotFound
		}
		return Post{}, apperr.Persistence("update post", err)
	}
	return r.GetByID(ctx, updatedID)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	sql, args, err := dialect.Delete(table).Prepared(true).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return apperr.Persistence("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	sql, args, err := upvoteQuery(id)
	if err != nil {
		return 0, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var upvotes int
	if err := pgxscan.Get(ctx, r.db, &upvotes, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return 0, ErrNotFound
		}
		return 0, apperr.Persistence("upvote post", err)
	}
	return upvotes, nil
}

func (r *PostgresRepo) SecretHash(ctx context.Context, id string) (string, error) {
	sql, args, err := dialect.From(table).Prepared(true).Select("secret_hash").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return "", err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var hash string
	if err := pgxscan.Get(ctx, r.db, &hash, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return "", ErrNotFound
		}
		return "", apperr.Persistence("get post secret", err)
	}
	return hash, nil
}
