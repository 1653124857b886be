package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// OfferLetterRepository handles persistence of offer letters and their
// lifecycle events.
type OfferLetterRepository struct {
	db *sqlx.DB
}

// NewOfferLetterRepository constructs the repository.
func NewOfferLetterRepository(db *sqlx.DB) *OfferLetterRepository {
	return &OfferLetterRepository{db: db}
}

const letterColumns = `id, application_id, reference, student_number, file_name, file_path, verification_code, generated_by, latest, created_at`

// ReplaceLatest flips any prior latest letter for the application to
// false and inserts the new letter as latest, in one transaction.
func (r *OfferLetterRepository) ReplaceLatest(ctx context.Context, letter *models.OfferLetter) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin letter transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const demoteQuery = `UPDATE offer_letters SET latest = FALSE WHERE application_id = $1 AND latest = TRUE`
	if _, err = tx.ExecContext(ctx, demoteQuery, letter.ApplicationID); err != nil {
		return fmt.Errorf("demote previous letters: %w", err)
	}

	if letter.ID == "" {
		letter.ID = uuid.NewString()
	}
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = time.Now().UTC()
	}
	letter.Latest = true

	const insertQuery = `INSERT INTO offer_letters (id, application_id, reference, student_number, file_name, file_path, verification_code, generated_by, latest, created_at)
        VALUES (:id, :application_id, :reference, :student_number, :file_name, :file_path, :verification_code, :generated_by, :latest, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, letter); err != nil {
		return fmt.Errorf("insert offer letter: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit offer letter: %w", err)
	}
	return nil
}

// FindLatestByReference returns the latest letter for an application reference.
func (r *OfferLetterRepository) FindLatestByReference(ctx context.Context, reference string) (*models.OfferLetter, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer_letters WHERE reference = $1 AND latest = TRUE LIMIT 1`, letterColumns)
	var letter models.OfferLetter
	if err := r.db.GetContext(ctx, &letter, query, reference); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest letter by reference: %w", err)
	}
	return &letter, nil
}

// FindLatestByStudentNumber returns the latest letter for a student number.
func (r *OfferLetterRepository) FindLatestByStudentNumber(ctx context.Context, studentNumber string) (*models.OfferLetter, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer_letters WHERE student_number = $1 AND latest = TRUE LIMIT 1`, letterColumns)
	var letter models.OfferLetter
	if err := r.db.GetContext(ctx, &letter, query, studentNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest letter by student number: %w", err)
	}
	return &letter, nil
}

// FindByVerificationCode returns a letter by its verification code. The
// code matches any historical letter, not only the latest one.
func (r *OfferLetterRepository) FindByVerificationCode(ctx context.Context, code string) (*models.OfferLetter, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer_letters WHERE verification_code = $1 LIMIT 1`, letterColumns)
	var letter models.OfferLetter
	if err := r.db.GetContext(ctx, &letter, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find letter by verification code: %w", err)
	}
	return &letter, nil
}

// FindByID returns a letter by its identifier.
func (r *OfferLetterRepository) FindByID(ctx context.Context, id string) (*models.OfferLetter, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer_letters WHERE id = $1`, letterColumns)
	var letter models.OfferLetter
	if err := r.db.GetContext(ctx, &letter, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find letter by id: %w", err)
	}
	return &letter, nil
}

// ListByApplication returns all letters for an application, newest first.
func (r *OfferLetterRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.OfferLetter, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer_letters WHERE application_id = $1 ORDER BY created_at DESC`, letterColumns)
	var letters []models.OfferLetter
	if err := r.db.SelectContext(ctx, &letters, query, applicationID); err != nil {
		return nil, fmt.Errorf("list letters by application: %w", err)
	}
	return letters, nil
}

// InsertEvent appends a lifecycle event.
func (r *OfferLetterRepository) InsertEvent(ctx context.Context, event *models.OfferLetterEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO offer_letter_events (id, offer_letter_id, application_id, action, actor_id, ip_address, user_agent, created_at)
        VALUES (:id, :offer_letter_id, :application_id, :action, :actor_id, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert letter event: %w", err)
	}
	return nil
}

// ListEvents returns lifecycle events for an application, newest first.
func (r *OfferLetterRepository) ListEvents(ctx context.Context, applicationID string) ([]models.OfferLetterEvent, error) {
	const query = `SELECT id, offer_letter_id, application_id, action, actor_id, ip_address, user_agent, created_at
        FROM offer_letter_events WHERE application_id = $1 ORDER BY created_at DESC`
	var events []models.OfferLetterEvent
	if err := r.db.SelectContext(ctx, &events, query, applicationID); err != nil {
		return nil, fmt.Errorf("list letter events: %w", err)
	}
	return events, nil
}
