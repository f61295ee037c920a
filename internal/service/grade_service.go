package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type gradeLedger interface {
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	UpdateGrade(ctx context.Context, id string, grade *models.Grade) error
}

// AssignGradeRequest carries the grade outcome for a ledger entry. A null
// grade is the explicit ungraded sentinel and clears the record.
type AssignGradeRequest struct {
	Grade *models.Grade `json:"grade"`
}

// GradeService assigns grade outcomes to ledger entries. Grading is
// authoritative for an admin actor: no eligibility re-evaluation happens
// here, and assigning the stored value again is a no-op.
type GradeService struct {
	ledger      gradeLedger
	invalidator availabilityInvalidator
	logger      *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(ledger gradeLedger, invalidator availabilityInvalidator, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{ledger: ledger, invalidator: invalidator, logger: logger}
}

func gradesEqual(a, b *models.Grade) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AssignGrade overwrites the grade outcome of a registration.
func (s *GradeService) AssignGrade(ctx context.Context, registrationID string, req AssignGradeRequest) (*models.Registration, error) {
	if req.Grade != nil && !req.Grade.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid grade value")
	}

	registration, err := s.ledger.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	if gradesEqual(registration.Grade, req.Grade) {
		return registration, nil
	}

	if err := s.ledger.UpdateGrade(ctx, registrationID, req.Grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	registration.Grade = req.Grade

	// A grade change can flip prerequisite status for dependent subjects.
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, registration.StudentID); err != nil {
			s.logger.Warn("failed to invalidate availability cache", zap.String("student_id", registration.StudentID), zap.Error(err))
		}
	}

	return registration, nil
}
