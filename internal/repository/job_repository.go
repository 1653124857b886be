package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// JobRepository handles persistence of job postings and candidate applications.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const postingColumns = `id, title, department, description, requirements, status, deadline, created_by, created_at, updated_at`

// CreatePosting persists a new job posting.
func (r *JobRepository) CreatePosting(ctx context.Context, posting *models.JobPosting) error {
	if posting.ID == "" {
		posting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if posting.CreatedAt.IsZero() {
		posting.CreatedAt = now
	}
	posting.UpdatedAt = now
	if posting.Status == "" {
		posting.Status = models.JobPostingStatusOpen
	}
	const query = `INSERT INTO job_postings (id, title, department, description, requirements, status, deadline, created_by, created_at, updated_at)
        VALUES (:id, :title, :department, :description, :requirements, :status, :deadline, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, posting); err != nil {
		return fmt.Errorf("create job posting: %w", err)
	}
	return nil
}

// FindPostingByID returns a posting by identifier.
func (r *JobRepository) FindPostingByID(ctx context.Context, id string) (*models.JobPosting, error) {
	query := fmt.Sprintf(`SELECT %s FROM job_postings WHERE id = $1`, postingColumns)
	var posting models.JobPosting
	if err := r.db.GetContext(ctx, &posting, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find job posting: %w", err)
	}
	return &posting, nil
}

// ListPostings returns postings filtered by the provided criteria.
func (r *JobRepository) ListPostings(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, int, error) {
	base := `FROM job_postings`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		postingColumns, base+clause, size, offset)

	var postings []models.JobPosting
	if err := r.db.SelectContext(ctx, &postings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list job postings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count job postings: %w", err)
	}
	return postings, total, nil
}

// UpdatePosting updates the mutable fields of a posting.
func (r *JobRepository) UpdatePosting(ctx context.Context, posting *models.JobPosting) error {
	posting.UpdatedAt = time.Now().UTC()
	const query = `UPDATE job_postings SET title = :title, department = :department, description = :description, requirements = :requirements, status = :status, deadline = :deadline, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, posting); err != nil {
		return fmt.Errorf("update job posting: %w", err)
	}
	return nil
}

// CreateJobApplication persists a candidate application.
func (r *JobRepository) CreateJobApplication(ctx context.Context, app *models.JobApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.JobApplicationStatusReceived
	}
	const query = `INSERT INTO job_applications (id, posting_id, full_name, email, phone, resume_path, cover_note, status, created_at, updated_at)
        VALUES (:id, :posting_id, :full_name, :email, :phone, :resume_path, :cover_note, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create job application: %w", err)
	}
	return nil
}

// FindJobApplicationByID returns a candidate application.
func (r *JobRepository) FindJobApplicationByID(ctx context.Context, id string) (*models.JobApplication, error) {
	const query = `SELECT id, posting_id, full_name, email, phone, resume_path, cover_note, status, created_at, updated_at
        FROM job_applications WHERE id = $1`
	var app models.JobApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find job application: %w", err)
	}
	return &app, nil
}

// ListJobApplications returns candidate applications for a posting.
func (r *JobRepository) ListJobApplications(ctx context.Context, postingID string) ([]models.JobApplication, error) {
	const query = `SELECT id, posting_id, full_name, email, phone, resume_path, cover_note, status, created_at, updated_at
        FROM job_applications WHERE posting_id = $1 ORDER BY created_at DESC`
	var apps []models.JobApplication
	if err := r.db.SelectContext(ctx, &apps, query, postingID); err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	return apps, nil
}

// UpdateJobApplicationStatus advances screening status for a candidate.
func (r *JobRepository) UpdateJobApplicationStatus(ctx context.Context, id string, status models.JobApplicationStatus) error {
	const query = `UPDATE job_applications SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update job application status: %w", err)
	}
	return nil
}
