package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bookclub/internal/book"
	"bookclub/internal/config"
	"bookclub/internal/database"
	"bookclub/internal/ingest"
	"bookclub/internal/logger"
	"bookclub/internal/platform/googlebooks"
	"bookclub/internal/resolver"

	"github.com/alecthomas/kong"
)

// CLI seeds the books table from the catalog by running one ingest.
type CLI struct {
	Query    []string `short:"q" sep:"none" help:"Catalog query to import (repeatable). Defaults to INGEST_QUERIES"`
	PerQuery int      `help:"Books to import per query. Defaults to INGEST_PER_QUERY"`
}

// Run imports the requested queries through the same job the API exposes.
func (c *CLI) Run(ctx context.Context, cfg config.Config) error {
	log := slog.Default()

	pool, err := database.Open(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	perQuery := cfg.IngestPerQuery
	if c.PerQuery > 0 {
		perQuery = c.PerQuery
	}

	catalog := googlebooks.NewClient(cfg.GoogleBooksBaseURL, cfg.GoogleBooksAPIKey, cfg.CatalogTimeout, log)
	res := resolver.New(book.NewPostgresRepo(pool, cfg.DBTimeout), catalog, log, resolver.Options{})
	job := ingest.NewService(res, ingest.NewPostgresRepo(pool), ingest.Config{
		Queries:  cfg.IngestQueries,
		PerQuery: perQuery,
	}, log)

	run, err := job.Run(ctx, c.Query...)
	if err != nil {
		return err
	}
	fmt.Printf("seeded: %d fetched, %d created, %d already stored\n", run.BooksFetched, run.BooksCreated, run.BooksExisting)
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Import books from Google Books into the local catalog."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if _, err := logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
