package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type studentLedgerReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error)
}

// StudentProfile bundles a student with their registration history for the
// personal page.
type StudentProfile struct {
	Student       models.Student              `json:"student"`
	Registrations []models.RegistrationDetail `json:"registrations"`
}

// StudentService serves student listing and profile views.
type StudentService struct {
	students studentRepository
	ledger   studentLedgerReader
	logger   *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentRepository, ledger studentLedgerReader, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, ledger: ledger, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Profile returns the student's identity plus registration history.
func (s *StudentService) Profile(ctx context.Context, studentID string) (*StudentProfile, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	registrations, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	return &StudentProfile{Student: *student, Registrations: registrations}, nil
}
