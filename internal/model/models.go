// Package model defines shared data structures for the jobs service.
package model

import "time"

// Experience-level buckets inferred from title/description keywords.
type ExperienceLevel string

const (
	ExperienceSenior      ExperienceLevel = "Senior"
	ExperienceMid         ExperienceLevel = "Mid"
	ExperienceJunior      ExperienceLevel = "Junior"
	ExperienceUnspecified ExperienceLevel = "Unspecified"
)

// Employment type inferred from description keywords. Defaults to full-time.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

// RawPosting is one unprocessed job posting as returned by the external
// job-search API, before extraction and normalization.
type RawPosting struct {
	ExternalID  string
	Title       string
	Company     string
	Location    string
	Description string
	SalaryMin   float64
	SalaryMax   float64
	Category    string
	Created     string // source timestamp, RFC 3339; may be empty
}

// JobListing mirrors a job_openings row. (Source, ExternalJobID) is the
// natural key used for idempotent upserts; re-ingesting the same posting
// updates the row in place.
type JobListing struct {
	Source          string          `json:"source"`
	ExternalJobID   string          `json:"externalJobId"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	Description     string          `json:"description"`
	RequiredSkills  []string        `json:"requiredSkills"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	JobType         JobType         `json:"jobType"`
	Department      string          `json:"department"`
	SalaryMin       float64         `json:"salaryMin,omitempty"`
	SalaryMax       float64         `json:"salaryMax,omitempty"`
	PostedDate      time.Time       `json:"postedDate"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
