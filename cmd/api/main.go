package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookclub/internal/book"
	"bookclub/internal/capability"
	"bookclub/internal/comment"
	"bookclub/internal/config"
	"bookclub/internal/database"
	"bookclub/internal/httpx"
	"bookclub/internal/ingest"
	"bookclub/internal/livesearch"
	"bookclub/internal/logger"
	"bookclub/internal/platform/googlebooks"
	"bookclub/internal/post"
	"bookclub/internal/rating"
	"bookclub/internal/readinglist"
	"bookclub/internal/resolver"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireCapabilitySecret(); err != nil {
		return err
	}

	log, err := logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat, httpx.RequestIDFromContext)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	bookRepo := book.NewPostgresRepo(pool, cfg.DBTimeout)
	catalog := googlebooks.NewClient(cfg.GoogleBooksBaseURL, cfg.GoogleBooksAPIKey, cfg.CatalogTimeout, log)
	res := resolver.New(bookRepo, catalog, log, resolver.Options{
		LocalLimit:   cfg.SearchLocalLimit,
		CatalogLimit: cfg.SearchCatalogLimit,
	})
	capabilities := capability.NewService(cfg.CapabilitySecret, cfg.CapabilityTTL)

	postSvc := post.NewService(post.NewPostgresRepo(pool, cfg.DBTimeout), bookRepo, res, capabilities, capabilities)
	commentSvc := comment.NewService(comment.NewPostgresRepo(pool, cfg.DBTimeout))
	listSvc := readinglist.NewService(readinglist.NewPostgresRepo(pool, cfg.DBTimeout), bookRepo, res)
	ratingSvc := rating.NewService(rating.NewPostgresRepo(pool, cfg.DBTimeout))
	ingestSvc := ingest.NewService(res, ingest.NewPostgresRepo(pool), ingest.Config{
		Queries:  cfg.IngestQueries,
		PerQuery: cfg.IngestPerQuery,
	}, log)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := newRouter(cfg, log, pool.Ping, rateLimiter,
		book.NewHTTPHandler(book.NewService(bookRepo)),
		resolver.NewHTTPHandler(res),
		rating.NewHTTPHandler(ratingSvc),
		post.NewHTTPHandler(postSvc),
		comment.NewHTTPHandler(commentSvc),
		readinglist.NewHTTPHandler(listSvc),
		livesearch.NewHandler(res.Search, cfg.SearchDebounce, cfg.CORSOrigins, log),
		ingest.NewHTTPHandler(ingestSvc, cfg.InternalSecret),
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type routes interface {
	Register(r chi.Router)
}

// newRouter assembles the middleware chain and mounts every handler.
// ready reports whether the database answers.
func newRouter(cfg config.Config, log *slog.Logger, ready func(context.Context) error, limiter *httpx.RateLimitMiddleware, handlers ...routes) http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log),
		httpx.RecoveryMiddleware(log),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			log.WarnContext(r.Context(), "readiness check failed", "error", err)
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "database not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		for _, h := range handlers {
			h.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}
