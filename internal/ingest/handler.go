package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"hirewise/jobs-service/internal/model"
)

// Lister is the read path the dashboard consumes: active listings, newest
// posted first.
type Lister interface {
	ListActive(ctx context.Context, limit int) ([]model.JobListing, error)
}

// ─── Response types ───────────────────────────────────────────────────────────

// runResponse is the JSON shape the dashboard's scheduler relay parses.
// jobsAdded counts newly inserted listings only; updates are folded into
// the message.
type runResponse struct {
	Success   bool   `json:"success"`
	JobsAdded int    `json:"jobsAdded"`
	Message   string `json:"message"`
}

// listResponse wraps the active listings returned to the dashboard.
type listResponse struct {
	Jobs  []model.JobListing `json:"jobs"`
	Count int                `json:"count"`
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler exposes the HTTP trigger for the ingestion pipeline and the
// read endpoint the dashboard polls.
type Handler struct {
	runner   JobRunner
	listings Lister
}

// NewHandler returns a configured Handler.
func NewHandler(runner JobRunner, listings Lister) *Handler {
	return &Handler{runner: runner, listings: listings}
}

// RegisterRoutes mounts the service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ingest-jobs", h.handleIngest)
	mux.HandleFunc("/jobs", h.handleListJobs)
}

// handleIngest runs one ingestion cycle. No request body is required; GET
// and POST both trigger a run, OPTIONS answers the CORS preflight.
func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodPost:
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sum, err := h.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("[ingest] HTTP trigger failed: %v", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Success:   true,
		JobsAdded: sum.JobsAdded,
		Message:   sum.Message(),
	})
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// handleListJobs serves GET /jobs?limit=N — active listings, newest posted
// first. An out-of-range or unparseable limit falls back to the default.
func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 && v <= maxListLimit {
			limit = v
		}
	}

	jobs, err := h.listings.ListActive(r.Context(), limit)
	if err != nil {
		log.Printf("[ingest] List jobs query error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []model.JobListing{}
	}

	writeJSON(w, http.StatusOK, listResponse{Jobs: jobs, Count: len(jobs)})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// setCORSHeaders mirrors the permissive policy the dashboard expects.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, content-type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ingest] Response encode error: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
