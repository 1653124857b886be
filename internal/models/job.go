package models

import "time"

// JobPostingStatus is the publication state of a posting.
type JobPostingStatus string

const (
	JobPostingStatusOpen   JobPostingStatus = "OPEN"
	JobPostingStatusClosed JobPostingStatus = "CLOSED"
)

// JobPosting is an HR vacancy announcement.
type JobPosting struct {
	ID           string           `db:"id" json:"id"`
	Title        string           `db:"title" json:"title"`
	Department   string           `db:"department" json:"department"`
	Description  string           `db:"description" json:"description"`
	Requirements *string          `db:"requirements" json:"requirements,omitempty"`
	Status       JobPostingStatus `db:"status" json:"status"`
	Deadline     *time.Time       `db:"deadline" json:"deadline,omitempty"`
	CreatedBy    *string          `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// JobApplicationStatus tracks screening progress.
type JobApplicationStatus string

const (
	JobApplicationStatusReceived    JobApplicationStatus = "RECEIVED"
	JobApplicationStatusShortlisted JobApplicationStatus = "SHORTLISTED"
	JobApplicationStatusRejected    JobApplicationStatus = "REJECTED"
	JobApplicationStatusHired       JobApplicationStatus = "HIRED"
)

// JobApplication is a candidate submission against a posting.
type JobApplication struct {
	ID         string               `db:"id" json:"id"`
	PostingID  string               `db:"posting_id" json:"posting_id"`
	FullName   string               `db:"full_name" json:"full_name"`
	Email      string               `db:"email" json:"email"`
	Phone      *string              `db:"phone" json:"phone,omitempty"`
	ResumePath *string              `db:"resume_path" json:"resume_path,omitempty"`
	CoverNote  *string              `db:"cover_note" json:"cover_note,omitempty"`
	Status     JobApplicationStatus `db:"status" json:"status"`
	CreatedAt  time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `db:"updated_at" json:"updated_at"`
}

// JobPostingFilter captures listing criteria for postings.
type JobPostingFilter struct {
	Status     JobPostingStatus
	Department string
	Search     string
	Page       int
	PageSize   int
}
