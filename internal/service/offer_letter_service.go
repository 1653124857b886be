package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/letter"
)

type letterRepository interface {
	ReplaceLatest(ctx context.Context, letter *models.OfferLetter) error
	FindLatestByReference(ctx context.Context, reference string) (*models.OfferLetter, error)
	FindLatestByStudentNumber(ctx context.Context, studentNumber string) (*models.OfferLetter, error)
	FindByVerificationCode(ctx context.Context, code string) (*models.OfferLetter, error)
	FindByID(ctx context.Context, id string) (*models.OfferLetter, error)
}

type applicationReader interface {
	FindByReference(ctx context.Context, reference string) (*models.Application, error)
}

type letterRenderer interface {
	Render(fields letter.Fields) ([]byte, error)
}

type letterStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Path(filename string) string
}

type downloadSigner interface {
	Generate(letterID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (letterID, relPath string, expiresAt time.Time, err error)
}

type letterEventRecorder interface {
	Record(event *models.OfferLetterEvent)
}

type verificationMetrics interface {
	IncLettersGenerated()
	IncVerifications()
}

// SignedLink is a shareable, expiring download link for a letter.
type SignedLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OfferLetterService renders, stores, and serves admission offer
// letters and their lifecycle events.
type OfferLetterService struct {
	repo     letterRepository
	apps     applicationReader
	renderer letterRenderer
	storage  letterStorage
	signer   downloadSigner
	events   letterEventRecorder
	metrics  verificationMetrics
	cfg      config.LettersConfig
	logger   *zap.Logger
}

// NewOfferLetterService constructs OfferLetterService.
func NewOfferLetterService(repo letterRepository, apps applicationReader, renderer letterRenderer, storage letterStorage, signer downloadSigner, events letterEventRecorder, metrics verificationMetrics, cfg config.LettersConfig, logger *zap.Logger) *OfferLetterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferLetterService{repo: repo, apps: apps, renderer: renderer, storage: storage, signer: signer, events: events, metrics: metrics, cfg: cfg, logger: logger}
}

// GenerateForApplication renders and stores a fresh letter for an
// accepted application, making it the latest and recording a GENERATED
// event. The application must already carry a student number.
func (s *OfferLetterService) GenerateForApplication(ctx context.Context, app models.Application, meta ClientMeta) (*models.OfferLetter, error) {
	if app.StudentNumber == nil || *app.StudentNumber == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application has no assigned student number")
	}

	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	now := time.Now().UTC()

	data, err := s.renderer.Render(letter.Fields{
		UniversityName:   s.cfg.UniversityName,
		SignatoryName:    s.cfg.SignatoryName,
		SignatoryTitle:   s.cfg.SignatoryTitle,
		ApplicantName:    app.FullName,
		Reference:        app.Reference,
		StudentNumber:    *app.StudentNumber,
		ProgrammeCode:    app.ProgrammeCode,
		VerificationCode: code,
		IssuedAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("render letter: %w", err)
	}

	fileName := fmt.Sprintf("%d/offer_letter_%s_%d.pdf", now.Year(), app.Reference, now.Unix())
	if _, err := s.storage.Save(fileName, data); err != nil {
		return nil, fmt.Errorf("store letter: %w", err)
	}

	generated := &models.OfferLetter{
		ApplicationID:    app.ID,
		Reference:        app.Reference,
		StudentNumber:    *app.StudentNumber,
		FileName:         fileName,
		FilePath:         s.storage.Path(fileName),
		VerificationCode: code,
		GeneratedBy:      meta.ActorID,
		CreatedAt:        now,
	}
	if err := s.repo.ReplaceLatest(ctx, generated); err != nil {
		return nil, fmt.Errorf("persist letter: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncLettersGenerated()
	}
	s.recordEvent(generated, models.LetterActionGenerated, meta)
	return generated, nil
}

// Regenerate re-renders the letter for an application that already has a
// student number. The numeric allocation is never re-run.
func (s *OfferLetterService) Regenerate(ctx context.Context, reference string, meta ClientMeta) (*models.OfferLetter, error) {
	app, err := s.apps.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.StudentNumber == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application has no assigned student number")
	}

	generated, err := s.GenerateForApplication(ctx, *app, meta)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to regenerate offer letter")
	}
	return generated, nil
}

// DownloadLatest resolves the latest letter by reference or student
// number and opens its file. A DOWNLOADED event is recorded best-effort.
func (s *OfferLetterService) DownloadLatest(ctx context.Context, reference, studentNumber string, meta ClientMeta) (*models.OfferLetter, *os.File, error) {
	var (
		found *models.OfferLetter
		err   error
	)
	switch {
	case reference != "":
		found, err = s.repo.FindLatestByReference(ctx, reference)
	case studentNumber != "":
		found, err = s.repo.FindLatestByStudentNumber(ctx, studentNumber)
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "reference or student_number is required")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "offer letter not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offer letter")
	}

	file, err := s.storage.Open(found.FileName)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open letter file")
	}

	s.recordEvent(found, models.LetterActionDownloaded, meta)
	return found, file, nil
}

// SignedLink issues an expiring public download link for the latest
// letter of an application.
func (s *OfferLetterService) SignedLink(ctx context.Context, reference string) (*SignedLink, error) {
	found, err := s.repo.FindLatestByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offer letter not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offer letter")
	}
	token, expiresAt, err := s.signer.Generate(found.ID, found.FileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &SignedLink{Token: token, ExpiresAt: expiresAt}, nil
}

// DownloadByToken serves a letter referenced by a signed link. The token
// alone authorises the download; a DOWNLOADED event is recorded with no
// actor.
func (s *OfferLetterService) DownloadByToken(ctx context.Context, token string, meta ClientMeta) (*models.OfferLetter, *os.File, error) {
	letterID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	found, err := s.repo.FindByID(ctx, letterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "offer letter not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offer letter")
	}
	if found.FileName != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "download token does not match letter")
	}

	file, err := s.storage.Open(found.FileName)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open letter file")
	}

	s.recordEvent(found, models.LetterActionDownloaded, meta)
	return found, file, nil
}

// Verify confirms the authenticity of a letter by its verification code.
// The payload exposes only what is needed to confirm authenticity.
func (s *OfferLetterService) Verify(ctx context.Context, code string) (*models.LetterVerification, error) {
	if s.metrics != nil {
		s.metrics.IncVerifications()
	}
	found, err := s.repo.FindByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "verification code not recognised")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify letter")
	}

	programme := ""
	if app, err := s.apps.FindByReference(ctx, found.Reference); err == nil {
		programme = app.ProgrammeCode
	}

	return &models.LetterVerification{
		Valid:         true,
		Reference:     found.Reference,
		StudentNumber: found.StudentNumber,
		ProgrammeCode: programme,
		IssuedAt:      found.CreatedAt,
	}, nil
}

// LogPrint records a PRINTED event against the latest letter.
func (s *OfferLetterService) LogPrint(ctx context.Context, reference string, meta ClientMeta) error {
	found, err := s.repo.FindLatestByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "offer letter not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offer letter")
	}
	s.recordEvent(found, models.LetterActionPrinted, meta)
	return nil
}

// LatestPath returns the stored path of the latest letter for a
// reference, or empty when none exists.
func (s *OfferLetterService) LatestPath(ctx context.Context, reference string) string {
	found, err := s.repo.FindLatestByReference(ctx, reference)
	if err != nil {
		return ""
	}
	return found.FilePath
}

func (s *OfferLetterService) recordEvent(l *models.OfferLetter, action string, meta ClientMeta) {
	if s.events == nil {
		return
	}
	s.events.Record(&models.OfferLetterEvent{
		OfferLetterID: l.ID,
		ApplicationID: l.ApplicationID,
		Action:        action,
		ActorID:       meta.ActorID,
		IPAddress:     meta.IP,
		UserAgent:     meta.UserAgent,
	})
}
