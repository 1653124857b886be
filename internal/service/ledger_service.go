package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/export"
)

type ledgerRepository interface {
	List(ctx context.Context, filter models.LedgerFilter) ([]models.AssignmentLedgerEntry, int, error)
	ListAll(ctx context.Context) ([]models.AssignmentLedgerEntry, error)
}

// LedgerService exposes the append-only assignment ledger.
type LedgerService struct {
	repo     ledgerRepository
	exporter *export.CSVExporter
	logger   *zap.Logger
}

// NewLedgerService constructs LedgerService.
func NewLedgerService(repo ledgerRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, exporter: export.NewCSVExporter(), logger: logger}
}

// List returns ledger entries matching the filter with a total count.
func (s *LedgerService) List(ctx context.Context, filter models.LedgerFilter) ([]models.AssignmentLedgerEntry, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ledger")
	}
	return entries, total, nil
}

// ExportCSV renders the full ledger as CSV bytes.
func (s *LedgerService) ExportCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ledger")
	}

	headers := []string{"reference", "student_number", "range_id", "issued_by", "issued_at"}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		issuedBy := ""
		if entry.IssuedBy != nil {
			issuedBy = *entry.IssuedBy
		}
		rows = append(rows, map[string]string{
			"reference":      entry.Reference,
			"student_number": entry.StudentNumber,
			"range_id":       entry.RangeID,
			"issued_by":      issuedBy,
			"issued_at":      entry.IssuedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	data, err := s.exporter.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}
