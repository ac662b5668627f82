// Package extract derives structured job attributes from free-text postings.
//
// All matching is case-insensitive substring matching with no word-boundary
// enforcement, so a vocabulary entry that is a substring of a longer word
// will false-positive (e.g. "java" inside "javascript"). That ambiguity is
// an accepted property of the keyword approach, not a bug to be patched
// per-entry; extraction is deterministic and never fails.
package extract

import (
	"regexp"
	"strings"

	"hirewise/jobs-service/internal/model"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup tags from a description fragment. Job boards
// deliver descriptions as HTML snippets; downstream matching wants plain
// text.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, " "))
}

// Attributes is the derived-fields result of one extraction.
type Attributes struct {
	RequiredSkills  []string // subset of the skill vocabulary, in vocabulary order; empty, never nil
	ExperienceLevel model.ExperienceLevel
	JobType         model.JobType
	Department      string
}

// Extractor applies the vocabulary tables to postings. Zero side effects;
// safe for concurrent use.
type Extractor struct {
	tables Tables
}

// New returns an Extractor bound to the given tables.
func New(tables Tables) *Extractor {
	return &Extractor{tables: tables}
}

// Extract derives attributes from a posting's title, category and plain-text
// description. The description must already be HTML-stripped.
func (e *Extractor) Extract(title, category, description string) Attributes {
	desc := strings.ToLower(description)
	titleDesc := strings.ToLower(title) + " " + desc
	titleCat := strings.ToLower(title) + " " + strings.ToLower(category)

	return Attributes{
		RequiredSkills:  e.matchSkills(desc),
		ExperienceLevel: experienceLevel(titleDesc),
		JobType:         jobType(desc),
		Department:      e.department(titleCat),
	}
}

// matchSkills returns every vocabulary term present in the lowercased
// description, preserving vocabulary order.
func (e *Extractor) matchSkills(desc string) []string {
	skills := make([]string, 0, 8)
	for _, term := range e.tables.Skills {
		if strings.Contains(desc, term) {
			skills = append(skills, term)
		}
	}
	return skills
}

// experienceLevel classifies by first-match priority: Senior beats Mid beats
// Junior, so a posting mentioning both "senior" and "junior" is Senior.
func experienceLevel(text string) model.ExperienceLevel {
	switch {
	case containsAny(text, "senior", "lead", "principal"):
		return model.ExperienceSenior
	case containsAny(text, "mid", "intermediate"):
		return model.ExperienceMid
	case containsAny(text, "junior", "entry", "graduate"):
		return model.ExperienceJunior
	}
	return model.ExperienceUnspecified
}

// jobType checks contract before part-time before internship; anything else
// is full-time.
func jobType(desc string) model.JobType {
	switch {
	case containsAny(desc, "contract", "freelance"):
		return model.JobTypeContract
	case containsAny(desc, "part-time", "part time"):
		return model.JobTypePartTime
	case containsAny(desc, "internship", "intern"):
		return model.JobTypeInternship
	}
	return model.JobTypeFullTime
}

// department walks the rules in priority order over title + category.
func (e *Extractor) department(titleCat string) string {
	for _, rule := range e.tables.Departments {
		for _, kw := range rule.Keywords {
			if strings.Contains(titleCat, kw) {
				return rule.Name
			}
		}
	}
	return departmentOther
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
