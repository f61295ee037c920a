package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/repository"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/export"
)

type registrationLedger interface {
	Create(ctx context.Context, registration *models.Registration) error
	ListBySubject(ctx context.Context, subjectID string) ([]models.RegistrationDetail, error)
	CountBySubject(ctx context.Context, subjectID string) (int, error)
}

type eligibilityEvaluator interface {
	Evaluate(ctx context.Context, studentID, subjectID string, term models.Term, academicYear int) (*models.EligibilityResult, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// availabilityInvalidator drops cached availability views after a mutation.
type availabilityInvalidator interface {
	Invalidate(ctx context.Context, studentID string) error
}

// RegisterRequest describes one registration attempt.
type RegisterRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	Term         string `json:"term" validate:"required"`
	AcademicYear int    `json:"academic_year" validate:"required,gt=0"`
}

// RegistrationService orchestrates one registration attempt: validate,
// consult the eligibility engine, write the ledger entry, report the
// outcome. Failures never leave partial writes behind.
type RegistrationService struct {
	ledger      registrationLedger
	engine      eligibilityEvaluator
	subjects    subjectReader
	invalidator availabilityInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(ledger registrationLedger, engine eligibilityEvaluator, subjects subjectReader, invalidator availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{ledger: ledger, engine: engine, subjects: subjects, invalidator: invalidator, validator: validate, logger: logger}
}

func reasonToError(reason models.EligibilityReason) *appErrors.Error {
	switch reason {
	case models.ReasonNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, "student or subject not found")
	case models.ReasonUnderage:
		return appErrors.ErrUnderage
	case models.ReasonPrerequisiteNotMet:
		return appErrors.ErrPrerequisiteNotMet
	case models.ReasonDuplicate:
		return appErrors.ErrDuplicateRegistration
	}
	return appErrors.ErrInternal
}

// Register records a new ungraded ledger entry for the student when the
// eligibility engine passes. A unique-constraint violation from a concurrent
// writer on the same key surfaces as the normal duplicate failure.
func (s *RegistrationService) Register(ctx context.Context, studentID string, req RegisterRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	term, ok := models.ParseTerm(req.Term)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term must be S1 or S2")
	}

	result, err := s.engine.Evaluate(ctx, studentID, req.SubjectID, term, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate eligibility")
	}
	if !result.Eligible {
		return nil, reasonToError(result.Reason)
	}

	registration := &models.Registration{
		StudentID:    studentID,
		SubjectID:    req.SubjectID,
		Term:         term,
		AcademicYear: req.AcademicYear,
	}
	if err := s.ledger.Create(ctx, registration); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.ErrDuplicateRegistration
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}

	// Monitored invariant: the subject's enrollment count can never be
	// negative. A violation is an internal bug, not a user error.
	count, err := s.ledger.CountBySubject(ctx, req.SubjectID)
	if err != nil {
		s.logger.Warn("failed to verify enrollment count", zap.String("subject_id", req.SubjectID), zap.Error(err))
	} else if count < 0 {
		s.logger.Error("negative enrollment count",
			zap.String("subject_id", req.SubjectID),
			zap.Int("count", count))
		return nil, appErrors.Clone(appErrors.ErrInvariantViolation, "enrollment count went negative")
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, studentID); err != nil {
			s.logger.Warn("failed to invalidate availability cache", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	return registration, nil
}

// Roster returns the full registration list of a subject for the admin view.
func (s *RegistrationService) Roster(ctx context.Context, subjectID string) (*models.Subject, []models.RegistrationDetail, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	registrations, err := s.ledger.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return subject, registrations, nil
}

// ExportRoster renders the subject roster as CSV or PDF.
func (s *RegistrationService) ExportRoster(ctx context.Context, subjectID, format string) ([]byte, string, error) {
	subject, registrations, err := s.Roster(ctx, subjectID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Registration ID", "Student ID", "Student", "Email", "Year", "Term", "Grade"},
	}
	for _, reg := range registrations {
		grade := ""
		if reg.Grade != nil {
			grade = string(*reg.Grade)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Registration ID": reg.ID,
			"Student ID":      reg.StudentID,
			"Student":         reg.StudentName(),
			"Email":           reg.StudentEmail,
			"Year":            strconv.Itoa(reg.AcademicYear),
			"Term":            string(reg.Term),
			"Grade":           grade,
		})
	}

	switch format {
	case "csv", "":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Registrations - %s", subject.Name)
		payload, err := export.NewPDFExporter().Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
