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

// ApplicationRepository handles persistence of admission applications
// and their submission steps.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, reference, full_name, email, phone, birth_date, address, programme_code, status, student_number, accepted_at, accepted_by, created_at, updated_at`

// Create persists a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	const query = `INSERT INTO applications (id, reference, full_name, email, phone, birth_date, address, programme_code, status, student_number, accepted_at, accepted_by, created_at, updated_at)
        VALUES (:id, :reference, :full_name, :email, :phone, :birth_date, :address, :programme_code, :status, :student_number, :accepted_at, :accepted_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByReference returns an application by its reference number.
func (r *ApplicationRepository) FindByReference(ctx context.Context, reference string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE reference = $1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, reference); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by reference: %w", err)
	}
	return &app, nil
}

// FindByStudentNumber returns an application by its assigned number.
func (r *ApplicationRepository) FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE student_number = $1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, studentNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by student number: %w", err)
	}
	return &app, nil
}

// List returns applications filtered by the provided criteria.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	base := `FROM applications`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.ProgrammeCode != "" {
		conditions = append(conditions, fmt.Sprintf("programme_code = $%d", len(args)+1))
		args = append(args, filter.ProgrammeCode)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR reference ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"status":     "status",
	}
	sortBy := allowedSorts[filter.SortBy]
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		applicationColumns, base+clause, sortBy, order, size, offset)

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// UpdatePersonal updates the personal-details step of an application.
func (r *ApplicationRepository) UpdatePersonal(ctx context.Context, app *models.Application) error {
	app.UpdatedAt = time.Now().UTC()
	const query = `UPDATE applications SET full_name = :full_name, email = :email, phone = :phone, birth_date = :birth_date, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("update application personal details: %w", err)
	}
	return nil
}

// UpdateStatus sets the acceptance status without touching the student number.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// AddEducation appends an education record.
func (r *ApplicationRepository) AddEducation(ctx context.Context, record *models.EducationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO education_records (id, application_id, institution, qualification, field_of_study, start_year, end_year, grade, created_at)
        VALUES (:id, :application_id, :institution, :qualification, :field_of_study, :start_year, :end_year, :grade, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("add education record: %w", err)
	}
	return nil
}

// ListEducation returns education records for an application.
func (r *ApplicationRepository) ListEducation(ctx context.Context, applicationID string) ([]models.EducationRecord, error) {
	const query = `SELECT id, application_id, institution, qualification, field_of_study, start_year, end_year, grade, created_at
        FROM education_records WHERE application_id = $1 ORDER BY start_year ASC`
	var records []models.EducationRecord
	if err := r.db.SelectContext(ctx, &records, query, applicationID); err != nil {
		return nil, fmt.Errorf("list education records: %w", err)
	}
	return records, nil
}

// AddExperience appends a work experience entry.
func (r *ApplicationRepository) AddExperience(ctx context.Context, exp *models.WorkExperience) error {
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO work_experiences (id, application_id, employer, position, start_date, end_date, description, created_at)
        VALUES (:id, :application_id, :employer, :position, :start_date, :end_date, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exp); err != nil {
		return fmt.Errorf("add work experience: %w", err)
	}
	return nil
}

// ListExperience returns work experiences for an application.
func (r *ApplicationRepository) ListExperience(ctx context.Context, applicationID string) ([]models.WorkExperience, error) {
	const query = `SELECT id, application_id, employer, position, start_date, end_date, description, created_at
        FROM work_experiences WHERE application_id = $1 ORDER BY start_date ASC`
	var experiences []models.WorkExperience
	if err := r.db.SelectContext(ctx, &experiences, query, applicationID); err != nil {
		return nil, fmt.Errorf("list work experiences: %w", err)
	}
	return experiences, nil
}

// AddDocument stores document metadata for an application.
func (r *ApplicationRepository) AddDocument(ctx context.Context, doc *models.ApplicationDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO application_documents (id, application_id, document_type, file_name, file_path, content_type, size_bytes, created_at)
        VALUES (:id, :application_id, :document_type, :file_name, :file_path, :content_type, :size_bytes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("add application document: %w", err)
	}
	return nil
}

// ListDocuments returns document metadata for an application.
func (r *ApplicationRepository) ListDocuments(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error) {
	const query = `SELECT id, application_id, document_type, file_name, file_path, content_type, size_bytes, created_at
        FROM application_documents WHERE application_id = $1 ORDER BY created_at ASC`
	var docs []models.ApplicationDocument
	if err := r.db.SelectContext(ctx, &docs, query, applicationID); err != nil {
		return nil, fmt.Errorf("list application documents: %w", err)
	}
	return docs, nil
}
