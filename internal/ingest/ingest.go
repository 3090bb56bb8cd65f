package ingest

import (
	"fmt"
	"time"

	"bookclub/internal/apperr"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

var ErrAlreadyRunning = fmt.Errorf("%w: an ingest run is already in progress", apperr.ErrConflict)

// Run is one execution of the catalog import, as recorded in ingest_runs.
type Run struct {
	ID            string     `json:"id" db:"id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Status        string     `json:"status" db:"status"`
	Queries       []string   `json:"queries" db:"-"`
	PerQuery      int        `json:"per_query" db:"per_query"`
	BooksFetched  int        `json:"books_fetched" db:"books_fetched"`
	BooksCreated  int        `json:"books_created" db:"books_created"`
	BooksExisting int        `json:"books_existing" db:"books_existing"`
	Error         string     `json:"error,omitempty" db:"error"`
}
