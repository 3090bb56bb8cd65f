package readinglist

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

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const itemColumns = `
	i.id, i.reading_list_id, i.book_id, i.added_at,
	b.title, b.author, b.genre, b.publication_date, b.description,
	b.cover_image_url, b.google_books_id, b.isbn13
`

func scanItem(row pgx.Row) (string, Item, error) {
	var listID string
	var it Item
	err := row.Scan(
		&it.ID, &listID, &it.BookID, &it.AddedAt,
		&it.Book.Title, &it.Book.Author, &it.Book.Genre, &it.Book.PublicationDate, &it.Book.Description,
		&it.Book.CoverImageURL, &it.Book.GoogleBooksID, &it.Book.ISBN13,
	)
	it.Book.DisplayCoverURL = book.ResolveCoverURL(it.Book.CoverImageURL, nil, nil, it.Book.Title)
	return listID, it, err
}

func (r *PostgresRepo) Create(ctx context.Context, l ReadingList) (ReadingList, error) {
	const insertSQL = `
		INSERT INTO reading_lists (name, description, author_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, insertSQL, l.Name, l.Description, l.AuthorName).Scan(&l.ID, &l.CreatedAt); err != nil {
		return ReadingList{}, apperr.Persistence("insert reading list", err)
	}
	l.Items = []Item{}
	return l, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]ReadingList, error) {
	const listSQL = `
		SELECT id, name, description, author_name, created_at
		FROM reading_lists
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, listSQL, limit)
	if err != nil {
		return nil, apperr.Persistence("list reading lists", err)
	}
	defer rows.Close()

	lists := []ReadingList{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var l ReadingList
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.AuthorName, &l.CreatedAt); err != nil {
			return nil, apperr.Persistence("list reading lists", err)
		}
		l.Items = []Item{}
		index[l.ID] = len(lists)
		ids = append(ids, l.ID)
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list reading lists", err)
	}
	if len(ids) == 0 {
		return lists, nil
	}

	itemsSQL := `
		SELECT ` + itemColumns + `
		FROM reading_list_items i
		JOIN books b ON b.id = i.book_id
		WHERE i.reading_list_id = ANY($1)
		ORDER BY i.added_at ASC, i.id ASC
	`
	itemRows, err := r.db.Query(timeoutCtx, itemsSQL, ids)
	if err != nil {
		return nil, apperr.Persistence("list reading list items", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		listID, it, err := scanItem(itemRows)
		if err != nil {
			return nil, apperr.Persistence("list reading list items", err)
		}
		if i, ok := index[listID]; ok {
			lists[i].Items = append(lists[i].Items, it)
		}
	}
	return lists, apperr.Persistence("list reading list items", itemRows.Err())
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (ReadingList, error) {
	const getSQL = `
		SELECT id, name, description, author_name, created_at
		FROM reading_lists
		WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var l ReadingList
	if err := r.db.QueryRow(timeoutCtx, getSQL, id).Scan(&l.ID, &l.Name, &l.Description, &l.AuthorName, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReadingList{}, ErrNotFound
		}
		return ReadingList{}, apperr.Persistence("get reading list", err)
	}

	itemsSQL := `
		SELECT ` + itemColumns + `
		FROM reading_list_items i
		JOIN books b ON b.id = i.book_id
		WHERE i.reading_list_id = $1
		ORDER BY i.added_at ASC, i.id ASC
	`
	rows, err := r.db.Query(timeoutCtx, itemsSQL, id)
	if err != nil {
		return ReadingList{}, apperr.Persistence("get reading list items", err)
	}
	defer rows.Close()

	l.Items = []Item{}
	for rows.Next() {
		_, it, err := scanItem(rows)
		if err != nil {
			return ReadingList{}, apperr.Persistence("get reading list items", err)
		}
		l.Items = append(l.Items, it)
	}
	return l, apperr.Persistence("get reading list items", rows.Err())
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM reading_lists WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete reading list", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) HasBook(ctx context.Context, listID, bookID string) (bool, error) {
	const existsSQL = `
		SELECT EXISTS (
			SELECT 1 FROM reading_list_items WHERE reading_list_id = $1 AND book_id = $2
		)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var exists bool
	if err := r.db.QueryRow(timeoutCtx, existsSQL, listID, bookID).Scan(&exists); err != nil {
		return false, apperr.Persistence("check reading list item", err)
	}
	return exists, nil
}

func (r *PostgresRepo) AddItem(ctx context.Context, listID, bookID string) (Item, error) {
	const insertSQL = `
		WITH inserted AS (
			INSERT INTO reading_list_items (reading_list_id, book_id)
			VALUES ($1, $2)
			RETURNING id, reading_list_id, book_id, added_at
		)
		SELECT ` + itemColumns + `
		FROM inserted i
		JOIN books b ON b.id = i.book_id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, it, err := scanItem(r.db.QueryRow(timeoutCtx, insertSQL, listID, bookID))
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return Item{}, ErrAlreadyInList
		}
		return Item{}, apperr.Persistence("add reading list item", err)
	}
	return it, nil
}

func (r *PostgresRepo) RemoveItem(ctx context.Context, listID, bookID string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx,
		`DELETE FROM reading_list_items WHERE reading_list_id = $1 AND book_id = $2`, listID, bookID)
	if err != nil {
		return apperr.Persistence("remove reading list item", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
