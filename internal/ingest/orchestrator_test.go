package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hirewise/jobs-service/internal/extract"
	"hirewise/jobs-service/internal/ingest"
	"hirewise/jobs-service/internal/model"
	"hirewise/jobs-service/internal/source"
	"hirewise/jobs-service/internal/store"
)

// ── Fakes ──────────────────────────────────────────────────────────────────

// fakeSource serves canned postings (or errors) keyed by "query|country".
type fakeSource struct {
	pages map[string][]model.RawPosting
	errs  map[string]error
	calls []string
}

func pairKey(query, country string) string { return query + "|" + country }

func (f *fakeSource) Fetch(_ context.Context, query, country string) ([]model.RawPosting, error) {
	key := pairKey(query, country)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.pages[key], nil
}

// fakeStore implements upsert/sweep semantics in memory.
type fakeStore struct {
	rows       map[string]model.JobListing
	upsertErr  map[string]error // keyed by external job id
	sweepErr   error
	lastCutoff time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.JobListing)}
}

func (f *fakeStore) Upsert(_ context.Context, l model.JobListing) (store.Outcome, error) {
	if err, ok := f.upsertErr[l.ExternalJobID]; ok {
		return 0, err
	}
	key := l.Source + "/" + l.ExternalJobID
	_, exists := f.rows[key]
	f.rows[key] = store.ClampLengths(l)
	if exists {
		return store.OutcomeUpdated, nil
	}
	return store.OutcomeInserted, nil
}

func (f *fakeStore) DeactivateOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.sweepErr != nil {
		return 0, f.sweepErr
	}
	var n int64
	for key, row := range f.rows {
		if row.IsActive && row.PostedDate.Before(cutoff) {
			row.IsActive = false
			f.rows[key] = row
			n++
		}
	}
	return n, nil
}

// noopPacer keeps the loop tests instant.
type noopPacer struct{}

func (noopPacer) Wait(context.Context) error { return nil }

func newOrchestrator(src ingest.Source, st ingest.Store, queries, countries []string) *ingest.Orchestrator {
	ex := extract.New(extract.DefaultTables())
	return ingest.NewOrchestrator(src, st, ex, noopPacer{}, queries, countries, 30)
}

func posting(id, title, desc string) model.RawPosting {
	return model.RawPosting{
		ExternalID:  id,
		Title:       title,
		Description: desc,
		Company:     "Acme",
		Location:    "Remote",
		Created:     time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339),
	}
}

// ── Idempotence ────────────────────────────────────────────────────────────

func TestRun_ReplayIsIdempotent(t *testing.T) {
	src := &fakeSource{pages: map[string][]model.RawPosting{
		pairKey("engineer", "us"): {posting("j1", "Senior Engineer", "python and docker")},
	}}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	first, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if first.JobsAdded != 1 || first.JobsUpdated != 0 {
		t.Fatalf("first run = added %d updated %d, want 1/0", first.JobsAdded, first.JobsUpdated)
	}
	afterFirst := st.rows["adzuna/j1"]

	second, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if second.JobsAdded != 0 || second.JobsUpdated != 1 {
		t.Errorf("second run = added %d updated %d, want 0/1", second.JobsAdded, second.JobsUpdated)
	}
	if len(st.rows) != 1 {
		t.Errorf("store has %d rows after replay, want exactly 1", len(st.rows))
	}

	afterSecond := st.rows["adzuna/j1"]
	if afterSecond.Title != afterFirst.Title ||
		afterSecond.Description != afterFirst.Description ||
		fmt.Sprint(afterSecond.RequiredSkills) != fmt.Sprint(afterFirst.RequiredSkills) {
		t.Errorf("replay changed field values:\nfirst:  %+v\nsecond: %+v", afterFirst, afterSecond)
	}
}

// ── Normalization ──────────────────────────────────────────────────────────

func TestRun_NormalizesPostings(t *testing.T) {
	src := &fakeSource{pages: map[string][]model.RawPosting{
		pairKey("engineer", "us"): {{
			ExternalID:  "j2",
			Title:       "Senior Backend Engineer",
			Company:     "Globex",
			Location:    "Berlin",
			Description: "<p>We run python on kubernetes. 6 month contract.</p>",
			Category:    "IT Jobs",
			Created:     "2026-08-25T12:00:00Z",
		}},
	}}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run error: %v", err)
	}

	row, ok := st.rows["adzuna/j2"]
	if !ok {
		t.Fatal("posting j2 was not stored")
	}
	if row.ExperienceLevel != model.ExperienceSenior {
		t.Errorf("ExperienceLevel = %q, want Senior", row.ExperienceLevel)
	}
	if row.JobType != model.JobTypeContract {
		t.Errorf("JobType = %q, want contract", row.JobType)
	}
	if row.Department != "Engineering" {
		t.Errorf("Department = %q, want Engineering", row.Department)
	}
	if fmt.Sprint(row.RequiredSkills) != fmt.Sprint([]string{"python", "kubernetes"}) {
		t.Errorf("RequiredSkills = %v, want [python kubernetes]", row.RequiredSkills)
	}
	if want := "2026-08-25T12:00:00Z"; row.PostedDate.UTC().Format(time.RFC3339) != want {
		t.Errorf("PostedDate = %s, want %s", row.PostedDate, want)
	}
	if !row.IsActive {
		t.Error("freshly ingested row must be active")
	}
}

func TestRun_MissingCreatedFallsBackToIngestionTime(t *testing.T) {
	p := posting("j3", "Engineer", "plain role")
	p.Created = ""
	src := &fakeSource{pages: map[string][]model.RawPosting{pairKey("engineer", "us"): {p}}}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	before := time.Now()
	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	row := st.rows["adzuna/j3"]
	if row.PostedDate.Before(before) || row.PostedDate.After(time.Now()) {
		t.Errorf("PostedDate = %s, want ingestion time fallback", row.PostedDate)
	}
}

func TestRun_PostingWithoutIDIsSkipped(t *testing.T) {
	src := &fakeSource{pages: map[string][]model.RawPosting{
		pairKey("engineer", "us"): {
			{Title: "No ID"},
			posting("j4", "Engineer", "fine"),
		},
	}}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if sum.JobsAdded != 1 || len(st.rows) != 1 {
		t.Errorf("added = %d rows = %d, want malformed posting skipped and j4 stored", sum.JobsAdded, len(st.rows))
	}
}

// ── Failure containment ────────────────────────────────────────────────────

func TestRun_FetchFailureDoesNotAbortOtherPairs(t *testing.T) {
	src := &fakeSource{
		pages: map[string][]model.RawPosting{
			pairKey("engineer", "us"): {posting("a1", "Engineer", "go services")},
			pairKey("designer", "us"): {posting("b1", "Designer", "figma work")},
		},
		errs: map[string]error{
			pairKey("analyst", "us"): &source.FetchError{Query: "analyst", Country: "us", Err: errors.New("connection reset")},
		},
	}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer", "analyst", "designer"}, []string{"us"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run must succeed despite a failed pair, got: %v", err)
	}
	if sum.JobsAdded != 2 {
		t.Errorf("JobsAdded = %d, want 2", sum.JobsAdded)
	}
	if sum.PairsFailed != 1 {
		t.Errorf("PairsFailed = %d, want 1", sum.PairsFailed)
	}
	if len(src.calls) != 3 {
		t.Errorf("source called %d times, want all 3 pairs attempted", len(src.calls))
	}
}

func TestRun_UpsertFailureDoesNotAbortBatch(t *testing.T) {
	src := &fakeSource{pages: map[string][]model.RawPosting{
		pairKey("engineer", "us"): {
			posting("bad", "Engineer", "x"),
			posting("good", "Engineer", "y"),
		},
	}}
	st := newFakeStore()
	st.upsertErr = map[string]error{"bad": errors.New("constraint violation")}
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if sum.JobsAdded != 1 {
		t.Errorf("JobsAdded = %d, want 1 (bad record skipped)", sum.JobsAdded)
	}
}

func TestRun_SweepFailureDoesNotFailRun(t *testing.T) {
	src := &fakeSource{pages: map[string][]model.RawPosting{
		pairKey("engineer", "us"): {posting("j5", "Engineer", "z")},
	}}
	st := newFakeStore()
	st.sweepErr = errors.New("store unavailable")
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("sweep failure must not fail the run, got: %v", err)
	}
	if sum.JobsAdded != 1 || sum.Swept != 0 {
		t.Errorf("summary = %+v, want added=1 swept=0", sum)
	}
}

func TestRun_MissingCredentialsAbortsRun(t *testing.T) {
	src := &fakeSource{errs: map[string]error{
		pairKey("engineer", "us"): source.ErrMissingCredentials,
	}}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer", "designer"}, []string{"us"})

	_, err := orch.Run(context.Background())
	if !errors.Is(err, source.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
	if len(src.calls) != 1 {
		t.Errorf("source called %d times, want run aborted after the first call", len(src.calls))
	}
}

// A listing the sweeper deactivated must come back when the source
// re-publishes it: the conflict branch of the upsert replaces is_active
// along with the other mutable fields.
func TestRun_ReingestedListingIsReactivated(t *testing.T) {
	st := newFakeStore()
	st.rows["adzuna/j6"] = model.JobListing{
		Source: "adzuna", ExternalJobID: "j6", Title: "Stale Engineer",
		IsActive:   false,
		PostedDate: time.Now().Add(-60 * 24 * time.Hour),
	}

	src := &fakeSource{pages: map[string][]model.RawPosting{
		pairKey("engineer", "us"): {posting("j6", "Engineer", "back on the market")},
	}}
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if sum.JobsUpdated != 1 || sum.JobsAdded != 0 {
		t.Errorf("summary = %+v, want the existing row updated, not duplicated", sum)
	}

	row := st.rows["adzuna/j6"]
	if !row.IsActive {
		t.Error("re-ingested listing must be active again")
	}
	if row.Title != "Engineer" {
		t.Errorf("Title = %q, want refreshed to %q", row.Title, "Engineer")
	}
}

// ── Retention ──────────────────────────────────────────────────────────────

func TestRun_RetentionBoundary(t *testing.T) {
	now := time.Now()
	st := newFakeStore()
	st.rows["adzuna/old"] = model.JobListing{
		Source: "adzuna", ExternalJobID: "old", IsActive: true,
		PostedDate: now.Add(-31 * 24 * time.Hour),
	}
	st.rows["adzuna/fresh"] = model.JobListing{
		Source: "adzuna", ExternalJobID: "fresh", IsActive: true,
		PostedDate: now.Add(-29 * 24 * time.Hour),
	}

	src := &fakeSource{}
	orch := newOrchestrator(src, st, []string{"engineer"}, []string{"us"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	wantCutoff := now.Add(-30 * 24 * time.Hour)
	if diff := st.lastCutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("sweep cutoff = %s, want ~%s", st.lastCutoff, wantCutoff)
	}
	if st.rows["adzuna/old"].IsActive {
		t.Error("31-day-old listing must be deactivated")
	}
	if !st.rows["adzuna/fresh"].IsActive {
		t.Error("29-day-old listing must stay active")
	}
	if sum.Swept != 1 {
		t.Errorf("Swept = %d, want 1", sum.Swept)
	}
}

// ── End-to-end scenario ────────────────────────────────────────────────────

// Two queries, one country; query A yields 3 postings, query B a transport
// error. Expect 3 rows, one failed pair, and an overall success.
func TestRun_EndToEndPartialFailure(t *testing.T) {
	src := &fakeSource{
		pages: map[string][]model.RawPosting{
			pairKey("engineer", "gb"): {
				posting("e1", "Senior Engineer", "python"),
				posting("e2", "Junior Engineer", "react"),
				posting("e3", "Engineer", "sql"),
			},
		},
		errs: map[string]error{
			pairKey("designer", "gb"): &source.FetchError{Query: "designer", Country: "gb", Err: errors.New("timeout")},
		},
	}
	st := newFakeStore()
	orch := newOrchestrator(src, st, []string{"engineer", "designer"}, []string{"gb"})

	sum, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if sum.JobsAdded != 3 {
		t.Errorf("JobsAdded = %d, want 3", sum.JobsAdded)
	}
	if sum.PairsFailed != 1 {
		t.Errorf("PairsFailed = %d, want 1", sum.PairsFailed)
	}
	if len(st.rows) != 3 {
		t.Errorf("store has %d rows, want 3", len(st.rows))
	}
}

// ── Summary message ────────────────────────────────────────────────────────

func TestSummaryMessage(t *testing.T) {
	s := ingest.Summary{JobsAdded: 3, JobsUpdated: 2}
	if got := s.Message(); got != "ingested 3 new and 2 updated job listings" {
		t.Errorf("Message() = %q", got)
	}

	s.PairsFailed = 1
	if got := s.Message(); got != "ingested 3 new and 2 updated job listings (1 search pairs failed)" {
		t.Errorf("Message() = %q", got)
	}
}
