// hirewise-jobs-service
//
// Job-listing ingestion and normalization for the hiring dashboard:
//   - fetches postings from the Adzuna job-search API for a fixed
//     (query × country) cross-product
//   - derives skills / experience level / job type / department via
//     keyword extraction
//   - upserts into job_openings keyed on (source, external_job_id)
//   - deactivates listings older than the retention window
//
// Triggered by POST /ingest-jobs or by the in-process cron timer; both go
// through the same Redis-locked runner.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hirewise/jobs-service/internal/config"
	"hirewise/jobs-service/internal/db"
	"hirewise/jobs-service/internal/extract"
	"hirewise/jobs-service/internal/ingest"
	"hirewise/jobs-service/internal/scheduler"
	"hirewise/jobs-service/internal/source"
	"hirewise/jobs-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load() // .env is optional outside local dev

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobs-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[jobs-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[jobs-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[jobs-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[jobs-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[jobs-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[jobs-service] Redis connected ✓")

	// ── Pipeline ─────────────────────────────────────────────────────────────
	client := source.NewAdzunaClient(cfg.AdzunaAppID, cfg.AdzunaAppKey)
	extractor := extract.New(extract.DefaultTables())
	pg := store.NewPostgres(pool)
	pacer := ingest.NewIntervalPacer(time.Duration(cfg.RequestDelayMS) * time.Millisecond)

	orch := ingest.NewOrchestrator(client, pg, extractor, pacer,
		cfg.SearchQueries, cfg.Countries, cfg.RetentionDays)
	runner := ingest.NewRunner(orch, ingest.NewRedisLock(rdb))

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(runner, cfg.ScrapeIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[jobs-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := ingest.NewHandler(runner, pg)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // an ingestion run holds the response open
	}

	go func() {
		log.Printf("[jobs-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[jobs-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[jobs-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobs-service] Shutdown error: %v", err)
	}
	log.Println("[jobs-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "jobs-service",
		"version": version,
	})
}
