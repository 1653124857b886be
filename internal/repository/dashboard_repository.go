package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// DashboardRepository aggregates admissions figures for the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountApplicationsByStatus returns application totals grouped by status.
func (r *DashboardRepository) CountApplicationsByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM applications GROUP BY status`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int)
	for rows.Next() {
		var status models.ApplicationStatus
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// CountLettersGenerated returns the number of letters ever generated.
func (r *DashboardRepository) CountLettersGenerated(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM offer_letters`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count offer letters: %w", err)
	}
	return total, nil
}

// CountOpenPostings returns the number of open job postings.
func (r *DashboardRepository) CountOpenPostings(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM job_postings WHERE status = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.JobPostingStatusOpen); err != nil {
		return 0, fmt.Errorf("count open postings: %w", err)
	}
	return total, nil
}
