package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// LedgerRepository reads the append-only assignment ledger. Entries are
// written exclusively by RangeRepository.Claim inside the claim
// transaction; nothing here mutates them.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// List returns ledger entries filtered by the provided criteria.
func (r *LedgerRepository) List(ctx context.Context, filter models.LedgerFilter) ([]models.AssignmentLedgerEntry, int, error) {
	base := `FROM assignment_ledger`
	var conditions []string
	var args []interface{}

	if filter.RangeID != "" {
		conditions = append(conditions, fmt.Sprintf("range_id = $%d", len(args)+1))
		args = append(args, filter.RangeID)
	}
	if filter.Reference != "" {
		conditions = append(conditions, fmt.Sprintf("reference = $%d", len(args)+1))
		args = append(args, filter.Reference)
	}
	if filter.IssuedBy != "" {
		conditions = append(conditions, fmt.Sprintf("issued_by = $%d", len(args)+1))
		args = append(args, filter.IssuedBy)
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

	query := fmt.Sprintf(`SELECT id, application_id, reference, student_number, range_id, issued_by, issued_at
        %s ORDER BY issued_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var entries []models.AssignmentLedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return entries, total, nil
}

// ListAll returns every ledger entry in issuance order, for export.
func (r *LedgerRepository) ListAll(ctx context.Context) ([]models.AssignmentLedgerEntry, error) {
	const query = `SELECT id, application_id, reference, student_number, range_id, issued_by, issued_at
        FROM assignment_ledger ORDER BY issued_at ASC`
	var entries []models.AssignmentLedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list all ledger entries: %w", err)
	}
	return entries, nil
}

// CountByRange returns the number of issuances recorded against a range.
func (r *LedgerRepository) CountByRange(ctx context.Context, rangeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM assignment_ledger WHERE range_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, rangeID); err != nil {
		return 0, fmt.Errorf("count ledger by range: %w", err)
	}
	return total, nil
}
