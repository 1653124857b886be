package models

import "time"

// OfferLetter is one generated admission letter. Only the most recent
// letter per application carries Latest = true.
type OfferLetter struct {
	ID               string    `db:"id" json:"id"`
	ApplicationID    string    `db:"application_id" json:"application_id"`
	Reference        string    `db:"reference" json:"reference"`
	StudentNumber    string    `db:"student_number" json:"student_number"`
	FileName         string    `db:"file_name" json:"file_name"`
	FilePath         string    `db:"file_path" json:"file_path"`
	VerificationCode string    `db:"verification_code" json:"verification_code"`
	GeneratedBy      *string   `db:"generated_by" json:"generated_by,omitempty"`
	Latest           bool      `db:"latest" json:"latest"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Offer letter lifecycle actions.
const (
	LetterActionGenerated  = "GENERATED"
	LetterActionDownloaded = "DOWNLOADED"
	LetterActionPrinted    = "PRINTED"
)

// OfferLetterEvent is an append-only lifecycle record. Writing one is
// best-effort and never fails the operation that triggered it.
type OfferLetterEvent struct {
	ID            string    `db:"id" json:"id"`
	OfferLetterID string    `db:"offer_letter_id" json:"offer_letter_id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	Action        string    `db:"action" json:"action"`
	ActorID       *string   `db:"actor_id" json:"actor_id,omitempty"`
	IPAddress     string    `db:"ip_address" json:"ip_address"`
	UserAgent     string    `db:"user_agent" json:"user_agent"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// LetterVerification is the public verification payload. It carries only
// what is needed to confirm authenticity.
type LetterVerification struct {
	Valid         bool      `json:"valid"`
	Reference     string    `json:"reference"`
	StudentNumber string    `json:"student_number"`
	ProgrammeCode string    `json:"programme_code"`
	IssuedAt      time.Time `json:"issued_at"`
}
