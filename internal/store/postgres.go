package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hirewise/jobs-service/internal/model"
)

// Postgres implements listing persistence on top of a pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Upsert inserts the listing or, when a row with the same
// (source, external_job_id) already exists, updates its mutable fields —
// including is_active, so a swept listing that the source re-publishes
// becomes visible again. Replaying the same listing is a no-op beyond
// bumping updated_at.
func (s *Postgres) Upsert(ctx context.Context, l model.JobListing) (Outcome, error) {
	l = ClampLengths(l)

	// xmax = 0 only holds for freshly inserted tuples, which is how we
	// distinguish insert from conflict-update without a second query.
	var inserted bool
	err := s.pool.QueryRow(ctx,
		`INSERT INTO job_openings
		   (source, external_job_id, title, company, location, description,
		    required_skills, experience_level, job_type, department,
		    salary_min, salary_max, posted_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (source, external_job_id) DO UPDATE SET
		   title            = EXCLUDED.title,
		   company          = EXCLUDED.company,
		   location         = EXCLUDED.location,
		   description      = EXCLUDED.description,
		   required_skills  = EXCLUDED.required_skills,
		   experience_level = EXCLUDED.experience_level,
		   job_type         = EXCLUDED.job_type,
		   department       = EXCLUDED.department,
		   salary_min       = EXCLUDED.salary_min,
		   salary_max       = EXCLUDED.salary_max,
		   posted_date      = EXCLUDED.posted_date,
		   is_active        = EXCLUDED.is_active,
		   updated_at       = now()
		 RETURNING (xmax = 0)`,
		l.Source, l.ExternalJobID, l.Title, l.Company, l.Location, l.Description,
		l.RequiredSkills, string(l.ExperienceLevel), string(l.JobType), l.Department,
		l.SalaryMin, l.SalaryMax, l.PostedDate, l.IsActive,
	).Scan(&inserted)
	if err != nil {
		return 0, fmt.Errorf("upsert %s/%s: %w", l.Source, l.ExternalJobID, err)
	}

	if inserted {
		return OutcomeInserted, nil
	}
	return OutcomeUpdated, nil
}

// DeactivateOlderThan flips is_active to false for every active listing
// posted before cutoff and returns the number of rows deactivated. Rows are
// never physically removed.
func (s *Postgres) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_openings
		 SET is_active = false, updated_at = now()
		 WHERE is_active = true AND posted_date < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// ListActive returns up to limit active listings, newest posted first.
// This is the read path the dashboard depends on.
func (s *Postgres) ListActive(ctx context.Context, limit int) ([]model.JobListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source, external_job_id, title, company, location, description,
		        required_skills, experience_level, job_type, department,
		        salary_min, salary_max, posted_date, is_active, created_at, updated_at
		 FROM job_openings
		 WHERE is_active = true
		 ORDER BY posted_date DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}
	defer rows.Close()

	listings := make([]model.JobListing, 0)
	for rows.Next() {
		var (
			l        model.JobListing
			expLevel string
			jobType  string
		)
		if err := rows.Scan(
			&l.Source, &l.ExternalJobID, &l.Title, &l.Company, &l.Location, &l.Description,
			&l.RequiredSkills, &expLevel, &jobType, &l.Department,
			&l.SalaryMin, &l.SalaryMax, &l.PostedDate, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("list active scan: %w", err)
		}
		l.ExperienceLevel = model.ExperienceLevel(expLevel)
		l.JobType = model.JobType(jobType)
		if l.RequiredSkills == nil {
			l.RequiredSkills = []string{}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
