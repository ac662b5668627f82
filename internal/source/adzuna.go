// Package source implements the external job-search API client.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hirewise/jobs-service/internal/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	httpTimeout    = 15 * time.Second
)

// ErrMissingCredentials signals that no API credentials were configured.
// The orchestrator treats this as a setup failure and aborts the whole run,
// unlike per-pair fetch errors which are logged and skipped.
var ErrMissingCredentials = errors.New("adzuna credentials not configured")

// FetchError wraps a transport failure or non-2xx response for one
// (query, country) pair.
type FetchError struct {
	Query      string
	Country    string
	StatusCode int // 0 for transport-level failures
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch (%q, %q): adzuna returned %d: %v", e.Query, e.Country, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch (%q, %q): %v", e.Query, e.Country, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AdzunaClient fetches job postings from the Adzuna public API.
type AdzunaClient struct {
	AppID   string
	AppKey  string
	BaseURL string
	client  *http.Client
}

// NewAdzunaClient constructs a client with a shared HTTP client.
func NewAdzunaClient(appID, appKey string) *AdzunaClient {
	return &AdzunaClient{
		AppID:   appID,
		AppKey:  appKey,
		BaseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Company     adzunaCompany  `json:"company"`
	Location    adzunaLocation `json:"location"`
	SalaryMin   float64        `json:"salary_min"`
	SalaryMax   float64        `json:"salary_max"`
	Category    adzunaCategory `json:"category"`
	Created     string         `json:"created"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// Fetch retrieves one page of postings (up to 50) for the given query and
// country code. Returns *FetchError for transport failures and non-2xx
// responses, ErrMissingCredentials when the client has no credentials.
func (c *AdzunaClient) Fetch(ctx context.Context, query, country string) ([]model.RawPosting, error) {
	if c.AppID == "" || c.AppKey == "" {
		return nil, ErrMissingCredentials
	}

	endpoint := fmt.Sprintf("%s/%s/search/1", c.BaseURL, country)

	params := url.Values{}
	params.Set("app_id", c.AppID)
	params.Set("app_key", c.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	reqURL := endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Query: query, Country: country, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Query: query, Country: country, Err: fmt.Errorf("http GET: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Query: query, Country: country, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Query:      query,
			Country:    country,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", string(body)),
		}
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &FetchError{Query: query, Country: country, Err: fmt.Errorf("json unmarshal: %w", err)}
	}

	postings := make([]model.RawPosting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		postings = append(postings, model.RawPosting{
			ExternalID:  r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			SalaryMin:   r.SalaryMin,
			SalaryMax:   r.SalaryMax,
			Category:    r.Category.Label,
			Created:     r.Created,
		})
	}

	return postings, nil
}
