package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// CurriculumRepository handles persistence for curriculum structures.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository creates a new repository instance.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// ListByFilter returns structures matching the optional course, major and
// term criteria.
func (r *CurriculumRepository) ListByFilter(ctx context.Context, filter models.CurriculumFilter) ([]models.CurriculumStructure, error) {
	base := "SELECT id, course_name, major_name, term, subject_id, required_subject_id, created_at FROM curriculum_structures WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("course_name = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Major != "" {
		conditions = append(conditions, fmt.Sprintf("major_name = $%d", len(args)+1))
		args = append(args, filter.Major)
	}
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}

	query := base
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY subject_id ASC"

	var structures []models.CurriculumStructure
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, fmt.Errorf("list curriculum structures: %w", err)
	}
	return structures, nil
}

// Upsert persists a structure under its derived key, so re-seeding the same
// dataset is idempotent.
func (r *CurriculumRepository) Upsert(ctx context.Context, structure *models.CurriculumStructure) error {
	if structure.ID == "" {
		structure.ID = structure.StructureKey()
	}
	if structure.CreatedAt.IsZero() {
		structure.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO curriculum_structures (id, course_name, major_name, term, subject_id, required_subject_id, created_at)
        VALUES (:id, :course_name, :major_name, :term, :subject_id, :required_subject_id, :created_at)
        ON CONFLICT (id) DO UPDATE SET required_subject_id = EXCLUDED.required_subject_id`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("upsert curriculum structure: %w", err)
	}
	return nil
}
