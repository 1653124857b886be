package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/repository"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/mailer"
)

type numberClaimer interface {
	Claim(ctx context.Context, params repository.ClaimParams) (*repository.ClaimResult, error)
}

type letterProducer interface {
	GenerateForApplication(ctx context.Context, app models.Application, actor ClientMeta) (*models.OfferLetter, error)
	LatestPath(ctx context.Context, reference string) string
}

type notificationSender interface {
	Send(msg mailer.Message) error
}

type allocationMetrics interface {
	IncNumbersIssued()
	IncLetterFailures()
	IncEmailsSent()
	IncEmailFailures()
}

// AssignRequest identifies the application to issue a number to.
type AssignRequest struct {
	Reference         string `json:"-" validate:"required"`
	AcceptedProgramme string `json:"accepted_programme"`
	Meta              ClientMeta
}

// AssignResult aggregates the claim outcome with the post-commit
// side-effect outcomes. A false flag never implies a failed claim.
type AssignResult struct {
	StudentNumber   string `json:"student_number"`
	AlreadyAssigned bool   `json:"already_assigned"`
	LetterGenerated bool   `json:"letter_generated"`
	EmailSent       bool   `json:"email_sent"`
	OfferLetterPath string `json:"offer_letter_path,omitempty"`
}

// ClientMeta carries actor identity and request metadata into side effects.
type ClientMeta struct {
	ActorID   *string
	IP        string
	UserAgent string
}

// AllocationService orchestrates the student number assignment workflow:
// the atomic claim, then letter generation and email dispatch as
// independent best-effort steps that never undo a committed claim.
type AllocationService struct {
	claims    numberClaimer
	letters   letterProducer
	mail      notificationSender
	metrics   allocationMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAllocationService constructs AllocationService.
func NewAllocationService(claims numberClaimer, letters letterProducer, mail notificationSender, metrics allocationMetrics, validate *validator.Validate, logger *zap.Logger) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{claims: claims, letters: letters, mail: mail, metrics: metrics, validator: validate, logger: logger}
}

// Assign issues the next student number from the active range to the
// referenced application. Re-invoking for an already-numbered
// application returns the existing number without consuming a new one.
func (s *AllocationService) Assign(ctx context.Context, req AssignRequest) (*AssignResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	claim, err := s.claims.Claim(ctx, repository.ClaimParams{
		Reference:         req.Reference,
		ActorID:           req.Meta.ActorID,
		ProgrammeOverride: req.AcceptedProgramme,
	})
	if err != nil {
		return nil, err
	}

	if claim.AlreadyAssigned {
		if req.AcceptedProgramme != "" && req.AcceptedProgramme != claim.Application.ProgrammeCode {
			s.logger.Warn("programme override ignored on idempotent replay",
				zap.String("reference", req.Reference),
				zap.String("stored_programme", claim.Application.ProgrammeCode),
				zap.String("requested_programme", req.AcceptedProgramme))
		}
		return &AssignResult{
			StudentNumber:   claim.StudentNumber,
			AlreadyAssigned: true,
			OfferLetterPath: s.letters.LatestPath(ctx, req.Reference),
		}, nil
	}

	if s.metrics != nil {
		s.metrics.IncNumbersIssued()
	}
	s.logger.Info("student number issued",
		zap.String("reference", req.Reference),
		zap.String("student_number", claim.StudentNumber),
		zap.String("range_id", claim.RangeID))

	result := &AssignResult{StudentNumber: claim.StudentNumber}

	letter, letterErr := s.letters.GenerateForApplication(ctx, claim.Application, req.Meta)
	if letterErr != nil {
		if s.metrics != nil {
			s.metrics.IncLetterFailures()
		}
		s.logger.Error("offer letter generation failed after claim",
			zap.String("reference", req.Reference), zap.Error(letterErr))
	} else {
		result.LetterGenerated = true
		result.OfferLetterPath = letter.FilePath
	}

	result.EmailSent = s.notify(claim.Application, letter)
	return result, nil
}

func (s *AllocationService) notify(app models.Application, letter *models.OfferLetter) bool {
	if app.Email == nil || *app.Email == "" {
		s.logger.Info("no applicant email on file, skipping notification",
			zap.String("reference", app.Reference))
		return false
	}

	msg := mailer.Message{
		To:      *app.Email,
		Subject: "Your admission offer",
		Body: fmt.Sprintf(
			"Dear %s,\n\nCongratulations! Your application %s has been accepted and your student number is %s.\n\nAdmissions Office",
			app.FullName, app.Reference, *app.StudentNumber),
	}
	if letter != nil {
		msg.AttachmentPath = letter.FilePath
	}

	if err := s.mail.Send(msg); err != nil {
		if s.metrics != nil {
			s.metrics.IncEmailFailures()
		}
		s.logger.Error("offer notification failed",
			zap.String("reference", app.Reference), zap.Error(err))
		return false
	}
	if s.metrics != nil {
		s.metrics.IncEmailsSent()
	}
	return true
}
