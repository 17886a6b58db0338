package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nsqio/go-nsq"

	"mentora/backend/features/job"
	"mentora/backend/features/stats"
	"mentora/backend/internal/adapter/gemini"
	pgstore "mentora/backend/internal/adapter/pgvector"
	"mentora/backend/internal/config"
	"mentora/backend/internal/fetch"
	"mentora/backend/internal/middleware"
	"mentora/backend/internal/scrape"
	"mentora/backend/internal/worker"
)

type App struct {
	Handler        http.Handler
	JobService     *job.Service
	IngestConsumer *worker.IngestConsumer

	cfg      *config.Config
	browser  *fetch.Browser
	embedder *gemini.Embedder
	consumer *nsq.Consumer
}

func New(ctx context.Context, cfg *config.Config, db *sql.DB, taskPub job.TaskPublisher) (*App, error) {
	// Scrape stack: one shared headless browser, tabs per fetch.
	browser := fetch.NewBrowser()
	scraper := scrape.NewScraper(
		browser,
		&http.Client{Timeout: 30 * time.Second},
		time.Duration(cfg.NavigationTimeoutSeconds)*time.Second,
		time.Duration(cfg.SelectorTimeoutSeconds)*time.Second,
	)

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder error: %w", err)
	}

	embStore := pgstore.NewStore(db)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub, scraper)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(jobRepo, embStore)

	ingestConsumer := worker.NewIngestConsumer(
		scraper, embedder, embStore, jobRepo,
		cfg.WorkerStartRate, cfg.MaxAttempts,
	)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("GET /jobs", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("GET /jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Get)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("POST /scrape/test", middleware.CorrelationID(enableCORS(jobHandler.TestURL)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.Get)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:        mux,
		JobService:     jobService,
		IngestConsumer: ingestConsumer,
		cfg:            cfg,
		browser:        browser,
		embedder:       embedder,
	}, nil
}

// StartConsumer connects the ingest worker to NSQ. MaxAttempts is left
// unlimited on the NSQ side; the worker enforces its own attempt cap and
// finishes messages itself.
func (a *App) StartConsumer() error {
	nsqCfg := nsq.NewConfig()
	nsqCfg.MaxInFlight = a.cfg.WorkerConcurrency
	nsqCfg.MaxAttempts = 0

	consumer, err := nsq.NewConsumer(config.TopicEmbedTask, config.ChannelPipeline, nsqCfg)
	if err != nil {
		return fmt.Errorf("nsq consumer error: %w", err)
	}
	consumer.AddConcurrentHandlers(a.IngestConsumer, a.cfg.WorkerConcurrency)

	if err := consumer.ConnectToNSQLookupd(a.cfg.NSQLookupd); err != nil {
		return fmt.Errorf("nsq lookupd connect error: %w", err)
	}
	a.consumer = consumer
	slog.Info("ingest consumer connected", "topic", config.TopicEmbedTask, "concurrency", a.cfg.WorkerConcurrency)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.ServerPort),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if a.consumer != nil {
			a.consumer.Stop()
			<-a.consumer.StopChan
		}
		a.browser.Close()
		if err := a.embedder.Close(); err != nil {
			slog.Error("embedder shutdown failed", "error", err)
		}
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.cfg.ServerPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
