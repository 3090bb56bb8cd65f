package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bookclub/internal/book"
	"bookclub/internal/platform/googlebooks"
)

const defaultPerQuery = 20

type Config struct {
	Queries  []string
	PerQuery int
}

// Catalog is the slice of the resolver the import needs.
type Catalog interface {
	SearchCatalog(ctx context.Context, query string, limit int) ([]googlebooks.Book, error)
	FindOrCreate(ctx context.Context, cb googlebooks.Book) (book.Book, bool, error)
}

// Service imports catalog search results into the local books table. Books
// already stored are left untouched, so running the job twice is harmless.
type Service struct {
	catalog Catalog
	repo    Repository
	cfg     Config
	logger  *slog.Logger

	running sync.Mutex
	now     func() time.Time
}

func NewService(catalog Catalog, repo Repository, cfg Config, logger *slog.Logger) *Service {
	if cfg.PerQuery <= 0 {
		cfg.PerQuery = defaultPerQuery
	}
	return &Service{catalog: catalog, repo: repo, cfg: cfg, logger: logger, now: time.Now}
}

// Run imports the configured queries. Queries overrides them when not empty.
// A catalog search failure stops the run and marks it FAILED; a book that
// cannot be stored is logged and skipped.
func (s *Service) Run(ctx context.Context, queries ...string) (run Run, err error) {
	if !s.running.TryLock() {
		return Run{}, ErrAlreadyRunning
	}
	defer s.running.Unlock()

	if len(queries) == 0 {
		queries = s.cfg.Queries
	}
	run = Run{
		Status:    StatusRunning,
		Queries:   queries,
		PerQuery:  s.cfg.PerQuery,
		StartedAt: s.now(),
	}
	run.ID, err = s.repo.CreateRun(ctx, &run)
	if err != nil {
		return Run{}, err
	}

	defer func() {
		finished := s.now()
		run.FinishedAt = &finished
		if err != nil && run.Error == "" {
			run.Error = err.Error()
		}
		if run.Error != "" {
			run.Status = StatusFailed
		} else {
			run.Status = StatusCompleted
		}
		// The caller may have gone away; the run record should still be closed.
		if updateErr := s.repo.UpdateRun(context.WithoutCancel(ctx), &run); updateErr != nil {
			s.logger.Error("failed to update ingest run", "run_id", run.ID, "error", updateErr)
		}
		s.logger.Info("ingest run finished",
			"run_id", run.ID,
			"status", run.Status,
			"fetched", run.BooksFetched,
			"created", run.BooksCreated,
			"existing", run.BooksExisting,
		)
	}()

	seen := make(map[string]bool)
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}

		results, err := s.catalog.SearchCatalog(ctx, q, s.cfg.PerQuery)
		if err != nil {
			run.Error = fmt.Sprintf("search failed for %q: %v", q, err)
			return run, err
		}
		run.BooksFetched += len(results)

		for _, cb := range results {
			if cb.GoogleBooksID == "" || seen[cb.GoogleBooksID] {
				continue
			}
			seen[cb.GoogleBooksID] = true

			_, created, err := s.catalog.FindOrCreate(ctx, cb)
			if err != nil {
				if ctx.Err() != nil {
					return run, ctx.Err()
				}
				s.logger.Warn("failed to import book", "google_books_id", cb.GoogleBooksID, "error", err)
				continue
			}
			if created {
				run.BooksCreated++
			} else {
				run.BooksExisting++
			}
		}
	}
	return run, nil
}

// Recent returns the latest runs, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.RecentRuns(ctx, limit)
}
