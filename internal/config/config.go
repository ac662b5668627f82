// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults for the search cross-product. Overridable via JOBS_SEARCH_QUERIES
// and JOBS_COUNTRIES (comma-separated).
var (
	defaultQueries = []string{
		"software engineer",
		"frontend developer",
		"backend developer",
		"data analyst",
		"product manager",
		"hr manager",
	}
	defaultCountries = []string{"us", "gb"}
)

// Config holds all runtime configuration for the jobs service.
type Config struct {
	Port                string
	DatabaseURL         string
	RedisURL            string
	AdzunaAppID         string
	AdzunaAppKey        string
	SearchQueries       []string
	Countries           []string
	ScrapeIntervalHours int // how often the cron job fires
	RequestDelayMS      int // courtesy delay between source requests
	RetentionDays       int // listings older than this are deactivated
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 12
	if s := os.Getenv("SCRAPE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	delay := 1000
	if s := os.Getenv("REQUEST_DELAY_MS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("REQUEST_DELAY_MS must be a non-negative integer, got %q", s)
		}
		delay = v
	}

	retention := 30
	if s := os.Getenv("RETENTION_DAYS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RETENTION_DAYS must be a positive integer, got %q", s)
		}
		retention = v
	}

	port := os.Getenv("JOBS_PORT")
	if port == "" {
		port = "8083"
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		AdzunaAppID:         os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:        os.Getenv("ADZUNA_APP_KEY"),
		SearchQueries:       csvOrDefault(os.Getenv("JOBS_SEARCH_QUERIES"), defaultQueries),
		Countries:           csvOrDefault(os.Getenv("JOBS_COUNTRIES"), defaultCountries),
		ScrapeIntervalHours: interval,
		RequestDelayMS:      delay,
		RetentionDays:       retention,
	}, nil
}

// csvOrDefault splits a comma-separated env value, trimming whitespace and
// dropping empty entries. Falls back to def when the value is empty.
func csvOrDefault(raw string, def []string) []string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
