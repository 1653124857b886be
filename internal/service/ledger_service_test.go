package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

type fakeLedgerRepo struct {
	entries []models.AssignmentLedgerEntry
}

func (f *fakeLedgerRepo) List(ctx context.Context, filter models.LedgerFilter) ([]models.AssignmentLedgerEntry, int, error) {
	return f.entries, len(f.entries), nil
}

func (f *fakeLedgerRepo) ListAll(ctx context.Context) ([]models.AssignmentLedgerEntry, error) {
	return f.entries, nil
}

func TestLedgerServiceExportCSV(t *testing.T) {
	issuedBy := "admin-1"
	repo := &fakeLedgerRepo{entries: []models.AssignmentLedgerEntry{
		{
			Reference:     "APP-2026-A",
			StudentNumber: "U261000",
			RangeID:       "range-1",
			IssuedBy:      &issuedBy,
			IssuedAt:      time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			Reference:     "APP-2026-B",
			StudentNumber: "U261001",
			RangeID:       "range-1",
			IssuedAt:      time.Date(2026, 8, 1, 9, 5, 0, 0, time.UTC),
		},
	}}
	svc := NewLedgerService(repo, nil)

	data, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "reference,student_number,range_id,issued_by,issued_at", lines[0])
	assert.Contains(t, lines[1], "APP-2026-A,U261000,range-1,admin-1,2026-08-01T09:00:00Z")
	assert.Contains(t, lines[2], "APP-2026-B,U261001,range-1,,2026-08-01T09:05:00Z")
}

func TestLedgerServiceListDefaultsPagination(t *testing.T) {
	repo := &fakeLedgerRepo{}
	svc := NewLedgerService(repo, nil)

	entries, total, err := svc.List(context.Background(), models.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, total)
}
