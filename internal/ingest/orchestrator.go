// Package ingest drives the job-listing ingestion pipeline: fetch postings
// for every (query × country) pair, extract attributes, upsert into the
// store, then sweep stale listings.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hirewise/jobs-service/internal/extract"
	"hirewise/jobs-service/internal/model"
	"hirewise/jobs-service/internal/source"
	"hirewise/jobs-service/internal/store"
)

// Source is the slice of the external API client the orchestrator needs.
type Source interface {
	Fetch(ctx context.Context, query, country string) ([]model.RawPosting, error)
}

// Store is the slice of the persistence layer the orchestrator needs.
type Store interface {
	Upsert(ctx context.Context, l model.JobListing) (store.Outcome, error)
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// sourceName tags every ingested row; part of the natural key.
const sourceName = "adzuna"

// Summary reports what one ingestion run did.
type Summary struct {
	JobsAdded   int
	JobsUpdated int
	PairsFailed int
	Swept       int64
}

// Message renders the operator-facing one-liner returned to callers.
func (s Summary) Message() string {
	msg := fmt.Sprintf("ingested %d new and %d updated job listings", s.JobsAdded, s.JobsUpdated)
	if s.PairsFailed > 0 {
		msg += fmt.Sprintf(" (%d search pairs failed)", s.PairsFailed)
	}
	return msg
}

// Orchestrator runs the sequential fetch → extract → upsert → sweep cycle.
// One outstanding source request at a time; the pacer spaces requests out as
// a courtesy to the API, not as error recovery.
type Orchestrator struct {
	source    Source
	store     Store
	extractor *extract.Extractor
	pacer     Pacer
	queries   []string
	countries []string
	retention time.Duration
	now       func() time.Time
}

// NewOrchestrator wires the pipeline together. retentionDays controls the
// sweep cutoff.
func NewOrchestrator(src Source, st Store, ex *extract.Extractor, pacer Pacer, queries, countries []string, retentionDays int) *Orchestrator {
	return &Orchestrator{
		source:    src,
		store:     st,
		extractor: ex,
		pacer:     pacer,
		queries:   queries,
		countries: countries,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Run executes one full ingestion cycle.
//
// Per-pair fetch failures and per-record write failures are logged and
// skipped so one bad pair cannot starve the rest; the run still counts as a
// success as long as the loop itself completed. Only setup-level failures
// (missing API credentials) abort the run with an error.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for _, country := range o.countries {
		for _, query := range o.queries {
			if err := o.pacer.Wait(ctx); err != nil {
				return sum, fmt.Errorf("pacer: %w", err)
			}

			postings, err := o.source.Fetch(ctx, query, country)
			if err != nil {
				if errors.Is(err, source.ErrMissingCredentials) {
					return sum, err
				}
				log.Printf("[ingest] Fetch (%q, %q) failed: %v — continuing", query, country, err)
				sum.PairsFailed++
				continue
			}

			for _, p := range postings {
				listing, err := o.normalize(p)
				if err != nil {
					log.Printf("[ingest] Skipping malformed posting (title %q): %v", p.Title, err)
					continue
				}

				outcome, err := o.store.Upsert(ctx, listing)
				if err != nil {
					log.Printf("[ingest] Upsert %q failed: %v — continuing", listing.ExternalJobID, err)
					continue
				}
				if outcome == store.OutcomeInserted {
					sum.JobsAdded++
				} else {
					sum.JobsUpdated++
				}
			}
		}
	}

	// Retention sweep runs after all fetch/upsert work; a sweep failure is
	// logged but never fails the run.
	cutoff := o.now().Add(-o.retention)
	swept, err := o.store.DeactivateOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[ingest] Retention sweep failed: %v", err)
	} else {
		sum.Swept = swept
	}

	return sum, nil
}

// normalize turns a raw posting into a storable listing: strip HTML, run
// keyword extraction, resolve the posted date.
func (o *Orchestrator) normalize(p model.RawPosting) (model.JobListing, error) {
	if p.ExternalID == "" {
		return model.JobListing{}, fmt.Errorf("posting has no external id")
	}

	desc := extract.StripHTML(p.Description)
	attrs := o.extractor.Extract(p.Title, p.Category, desc)

	posted := o.now()
	if p.Created != "" {
		t, err := time.Parse(time.RFC3339, p.Created)
		if err == nil {
			posted = t
		}
		// Unparseable timestamps fall back to ingestion time rather than
		// dropping the posting.
	}

	return model.JobListing{
		Source:          sourceName,
		ExternalJobID:   p.ExternalID,
		Title:           p.Title,
		Company:         p.Company,
		Location:        p.Location,
		Description:     desc,
		RequiredSkills:  attrs.RequiredSkills,
		ExperienceLevel: attrs.ExperienceLevel,
		JobType:         attrs.JobType,
		Department:      attrs.Department,
		SalaryMin:       p.SalaryMin,
		SalaryMax:       p.SalaryMax,
		PostedDate:      posted,
		IsActive:        true,
	}, nil
}
