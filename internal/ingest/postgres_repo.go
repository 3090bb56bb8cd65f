package ingest

import (
	"context"
	"strings"

	"bookclub/internal/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) (string, error)
	UpdateRun(ctx context.Context, run *Run) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	const sql = `
		INSERT INTO ingest_runs (started_at, status, queries, per_query)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id string
	err := r.db.QueryRow(ctx, sql, run.StartedAt, run.Status, strings.Join(run.Queries, ","), run.PerQuery).Scan(&id)
	return id, apperr.Persistence("create ingest run", err)
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE ingest_runs SET
			finished_at = $1,
			status = $2,
			books_fetched = $3,
			books_created = $4,
			books_existing = $5,
			error = NULLIF($6, '')
		WHERE id = $7`

	_, err := r.db.Exec(ctx, sql, run.FinishedAt, run.Status, run.BooksFetched, run.BooksCreated, run.BooksExisting, run.Error, run.ID)
	return apperr.Persistence("update ingest run", err)
}

func (r *PostgresRepo) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	const sql = `
		SELECT id, started_at, finished_at, status, queries, per_query,
		       books_fetched, books_created, books_existing, COALESCE(error, '')
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, apperr.Persistence("list ingest runs", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run     Run
			queries string
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &queries, &run.PerQuery,
			&run.BooksFetched, &run.BooksCreated, &run.BooksExisting, &run.Error); err != nil {
			return nil, apperr.Persistence("scan ingest run", err)
		}
		if queries != "" {
			run.Queries = strings.Split(queries, ",")
		}
		runs = append(runs, run)
	}
	return runs, apperr.Persistence("list ingest runs", rows.Err())
}
