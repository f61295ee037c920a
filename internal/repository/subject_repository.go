package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// SubjectRepository handles persistence for the subject catalog.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, credit, teacher, required_before_id, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListAll returns the full catalog ordered by id, with the prerequisite
// name resolved via a self join.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.SubjectDetail, error) {
	const query = `SELECT s.id, s.name, s.credit, s.teacher, s.required_before_id, s.created_at, s.updated_at,
        p.name AS required_before_name
        FROM subjects s
        LEFT JOIN subjects p ON p.id = s.required_before_id
        ORDER BY s.id ASC`
	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Create persists a new catalog subject. Seed path only.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, credit, teacher, required_before_id, created_at, updated_at)
        VALUES (:id, :name, :credit, :teacher, :required_before_id, :created_at, :updated_at)
        ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
