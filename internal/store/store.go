// Package store persists normalized job listings in PostgreSQL.
package store

import "hirewise/jobs-service/internal/model"

// Column length caps applied before every write. Overlong values are
// silently truncated, never rejected.
const (
	MaxTitleLen       = 255
	MaxCompanyLen     = 255
	MaxDescriptionLen = 2000
)

// Outcome reports whether an upsert created a new row or refreshed an
// existing one.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeUpdated
)

func (o Outcome) String() string {
	if o == OutcomeInserted {
		return "inserted"
	}
	return "updated"
}

// ClampLengths returns a copy of the listing with title, company and
// description truncated to the column caps.
func ClampLengths(l model.JobListing) model.JobListing {
	l.Title = clip(l.Title, MaxTitleLen)
	l.Company = clip(l.Company, MaxCompanyLen)
	l.Description = clip(l.Description, MaxDescriptionLen)
	return l
}

// clip truncates s to at most max characters (runes, so multi-byte text is
// not cut mid-character).
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
