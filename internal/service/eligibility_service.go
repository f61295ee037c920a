package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// minRegistrationAge is the domain-wide minimum age in whole years.
const minRegistrationAge = 15

type eligibilityStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type eligibilitySubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type eligibilityLedgerReader interface {
	ListByStudentAndSubject(ctx context.Context, studentID, subjectID string) ([]models.Registration, error)
	ExistsByKey(ctx context.Context, studentID, subjectID string, academicYear int, term models.Term) (bool, error)
}

// EligibilityService decides whether a student may register for a subject in
// a given term. It is stateless and reentrant. Checks run in a fixed order
// and short-circuit on the first failure, so exactly one reason is reported
// even when several would apply: existence, age, prerequisite, duplicate.
type EligibilityService struct {
	students eligibilityStudentReader
	subjects eligibilitySubjectReader
	ledger   eligibilityLedgerReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewEligibilityService constructs EligibilityService.
func NewEligibilityService(students eligibilityStudentReader, subjects eligibilitySubjectReader, ledger eligibilityLedgerReader, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		students: students,
		subjects: subjects,
		ledger:   ledger,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Tests use this to pin the current
// date for age calculations.
func (s *EligibilityService) WithClock(now func() time.Time) *EligibilityService {
	s.now = now
	return s
}

func ineligible(reason models.EligibilityReason) *models.EligibilityResult {
	return &models.EligibilityResult{Eligible: false, Reason: reason}
}

// Evaluate runs the full eligibility decision for one registration attempt.
// A nil error with Eligible=false is a business outcome; a non-nil error is
// an infrastructure failure.
func (s *EligibilityService) Evaluate(ctx context.Context, studentID, subjectID string, term models.Term, academicYear int) (*models.EligibilityResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ineligible(models.ReasonNotFound), nil
		}
		return nil, err
	}

	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ineligible(models.ReasonNotFound), nil
		}
		return nil, err
	}

	if student.AgeAt(s.now()) < minRegistrationAge {
		return ineligible(models.ReasonUnderage), nil
	}

	satisfied, err := s.PrerequisiteSatisfied(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}
	if !satisfied {
		return ineligible(models.ReasonPrerequisiteNotMet), nil
	}

	exists, err := s.ledger.ExistsByKey(ctx, studentID, subjectID, academicYear, term)
	if err != nil {
		return nil, err
	}
	if exists {
		return ineligible(models.ReasonDuplicate), nil
	}

	return &models.EligibilityResult{Eligible: true}, nil
}

// PrerequisiteSatisfied reports whether the student has passed the subject's
// prerequisite. A subject without a prerequisite trivially passes. Passing
// requires at least one ledger entry for the prerequisite subject, any term
// or year, whose grade is present and not F. Availability Resolution shares
// this exact check so the browse-time flag never disagrees with the
// commit-time decision.
func (s *EligibilityService) PrerequisiteSatisfied(ctx context.Context, studentID string, subject *models.Subject) (bool, error) {
	if subject.RequiredBeforeID == nil {
		return true, nil
	}

	attempts, err := s.ledger.ListByStudentAndSubject(ctx, studentID, *subject.RequiredBeforeID)
	if err != nil {
		return false, err
	}
	for _, attempt := range attempts {
		if attempt.Grade != nil && attempt.Grade.Passing() {
			return true, nil
		}
	}
	return false, nil
}
