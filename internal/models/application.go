package models

import "time"

// ApplicationStatus is the acceptance state of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Application represents an admission application.
// StudentNumber stays nil until the allocator accepts the application;
// once set it is never cleared or reassigned.
type Application struct {
	ID            string            `db:"id" json:"id"`
	Reference     string            `db:"reference" json:"reference"`
	FullName      string            `db:"full_name" json:"full_name"`
	Email         *string           `db:"email" json:"email,omitempty"`
	Phone         *string           `db:"phone" json:"phone,omitempty"`
	BirthDate     *time.Time        `db:"birth_date" json:"birth_date,omitempty"`
	Address       *string           `db:"address" json:"address,omitempty"`
	ProgrammeCode string            `db:"programme_code" json:"programme_code"`
	Status        ApplicationStatus `db:"status" json:"status"`
	StudentNumber *string           `db:"student_number" json:"student_number,omitempty"`
	AcceptedAt    *time.Time        `db:"accepted_at" json:"accepted_at,omitempty"`
	AcceptedBy    *string           `db:"accepted_by" json:"accepted_by,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// EducationRecord is one prior-education entry on an application.
type EducationRecord struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	Institution   string    `db:"institution" json:"institution"`
	Qualification string    `db:"qualification" json:"qualification"`
	FieldOfStudy  *string   `db:"field_of_study" json:"field_of_study,omitempty"`
	StartYear     int       `db:"start_year" json:"start_year"`
	EndYear       *int      `db:"end_year" json:"end_year,omitempty"`
	Grade         *string   `db:"grade" json:"grade,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// WorkExperience is one employment entry on an application.
type WorkExperience struct {
	ID            string     `db:"id" json:"id"`
	ApplicationID string     `db:"application_id" json:"application_id"`
	Employer      string     `db:"employer" json:"employer"`
	Position      string     `db:"position" json:"position"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	Description   *string    `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ApplicationDocument stores uploaded document metadata.
type ApplicationDocument struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	DocumentType  string    `db:"document_type" json:"document_type"`
	FileName      string    `db:"file_name" json:"file_name"`
	FilePath      string    `db:"file_path" json:"file_path"`
	ContentType   string    `db:"content_type" json:"content_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ApplicationFilter captures listing criteria for applications.
type ApplicationFilter struct {
	Status        ApplicationStatus
	ProgrammeCode string
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// ApplicationDetail bundles an application with its submission steps.
type ApplicationDetail struct {
	Application
	Education  []EducationRecord     `json:"education"`
	Experience []WorkExperience      `json:"experience"`
	Documents  []ApplicationDocument `json:"documents"`
}
