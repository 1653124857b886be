package models

import "time"

// NumberRange is an administrator-defined span of student numbers.
// Invariants: at most one range is active; start <= next <= end+1.
// A range with next == end+1 is exhausted and issues nothing further.
type NumberRange struct {
	ID          string    `db:"id" json:"id"`
	Prefix      string    `db:"prefix" json:"prefix"`
	StartNumber int64     `db:"start_number" json:"start_number"`
	EndNumber   int64     `db:"end_number" json:"end_number"`
	Next        int64     `db:"next" json:"next"`
	Active      bool      `db:"active" json:"active"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Exhausted reports whether the range has no numbers left to issue.
func (r NumberRange) Exhausted() bool {
	return r.Next > r.EndNumber
}

// Remaining returns how many numbers the range can still issue.
func (r NumberRange) Remaining() int64 {
	if r.Exhausted() {
		return 0
	}
	return r.EndNumber - r.Next + 1
}

// AssignmentLedgerEntry is the append-only audit record of one issuance.
type AssignmentLedgerEntry struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	Reference     string    `db:"reference" json:"reference"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	RangeID       string    `db:"range_id" json:"range_id"`
	IssuedBy      *string   `db:"issued_by" json:"issued_by,omitempty"`
	IssuedAt      time.Time `db:"issued_at" json:"issued_at"`
}

// LedgerFilter captures listing criteria for the assignment ledger.
type LedgerFilter struct {
	RangeID   string
	Reference string
	IssuedBy  string
	Page      int
	PageSize  int
}
