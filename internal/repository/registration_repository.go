package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-reg-api/internal/models"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The registrations table carries a unique constraint on
// (student_id, subject_id, academic_year, term); a violation there means a
// concurrent writer already registered the same key.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// RegistrationRepository handles persistence of the enrollment ledger.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = "id, student_id, subject_id, term, academic_year, grade, created_at, updated_at"

// Create persists a new ledger entry. The caller must treat a unique
// violation as a duplicate registration, not an internal failure.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = now
	}
	registration.UpdatedAt = now

	const query = `INSERT INTO registrations (id, student_id, subject_id, term, academic_year, grade, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :term, :academic_year, :grade, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByID returns a ledger entry by its id.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// ExistsByKey checks the composite duplicate-registration key.
func (r *RegistrationRepository) ExistsByKey(ctx context.Context, studentID, subjectID string, academicYear int, term models.Term) (bool, error) {
	const query = `SELECT 1 FROM registrations WHERE student_id = $1 AND subject_id = $2 AND academic_year = $3 AND term = $4 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID, academicYear, term); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check registration key: %w", err)
	}
	return true, nil
}

// ListByStudentAndSubject returns every attempt the student made for a
// subject, any term or year. Used for the prerequisite check.
func (r *RegistrationRepository) ListByStudentAndSubject(ctx context.Context, studentID, subjectID string) ([]models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE student_id = $1 AND subject_id = $2", registrationColumns)
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, studentID, subjectID); err != nil {
		return nil, fmt.Errorf("list registrations by subject: %w", err)
	}
	return registrations, nil
}

// ListByStudent returns the student's full registration history, newest
// terms first.
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.student_id, r.subject_id, r.term, r.academic_year, r.grade, r.created_at, r.updated_at,
        s.prefix AS student_prefix, s.first_name AS student_first_name, s.last_name AS student_last_name,
        s.email AS student_email, sub.name AS subject_name
        FROM registrations r
        JOIN students s ON s.id = r.student_id
        JOIN subjects sub ON sub.id = r.subject_id
        WHERE r.student_id = $1
        ORDER BY r.academic_year DESC, r.term DESC`
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, studentID); err != nil {
		return nil, fmt.Errorf("list registrations by student: %w", err)
	}
	return registrations, nil
}

// ListBySubject returns the roster of a subject for the admin view, newest
// terms first.
func (r *RegistrationRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.student_id, r.subject_id, r.term, r.academic_year, r.grade, r.created_at, r.updated_at,
        s.prefix AS student_prefix, s.first_name AS student_first_name, s.last_name AS student_last_name,
        s.email AS student_email, sub.name AS subject_name
        FROM registrations r
        JOIN students s ON s.id = r.student_id
        JOIN subjects sub ON sub.id = r.subject_id
        WHERE r.subject_id = $1
        ORDER BY r.academic_year DESC, r.term DESC`
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, subjectID); err != nil {
		return nil, fmt.Errorf("list subject roster: %w", err)
	}
	return registrations, nil
}

// ListSubjectIDsByStudent returns the distinct subject ids the student has
// any attempt for.
func (r *RegistrationRepository) ListSubjectIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT DISTINCT subject_id FROM registrations WHERE student_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list registered subject ids: %w", err)
	}
	return ids, nil
}

// UpdateGrade overwrites the grade outcome of a ledger entry. A nil grade
// clears the record back to ungraded.
func (r *RegistrationRepository) UpdateGrade(ctx context.Context, id string, grade *models.Grade) error {
	const query = `UPDATE registrations SET grade = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, grade, time.Now().UTC()); err != nil {
		return fmt.Errorf("update registration grade: %w", err)
	}
	return nil
}

// CountBySubject returns the total registrations recorded for a subject.
func (r *RegistrationRepository) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return 0, fmt.Errorf("count subject registrations: %w", err)
	}
	return count, nil
}
