package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-reg-api/internal/models"
)

func newCurriculumMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCurriculumRepositoryListByFilter(t *testing.T) {
	db, mock, cleanup := newCurriculumMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_name", "major_name", "term", "subject_id", "required_subject_id", "created_at"}).
		AddRow("Computer_Science-Software-CS101-S1", "Computer Science", "Software", "S1", "CS101", nil, time.Now())
	mock.ExpectQuery("FROM curriculum_structures WHERE 1=1 AND").
		WithArgs("Computer Science", "Software", models.TermFirst).
		WillReturnRows(rows)

	structures, err := repo.ListByFilter(context.Background(), models.CurriculumFilter{
		Course: "Computer Science",
		Major:  "Software",
		Term:   models.TermFirst,
	})
	require.NoError(t, err)
	require.Len(t, structures, 1)
	assert.Equal(t, "CS101", structures[0].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumRepositoryListByFilterUnfiltered(t *testing.T) {
	db, mock, cleanup := newCurriculumMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectQuery("FROM curriculum_structures WHERE 1=1 ORDER BY subject_id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_name", "major_name", "term", "subject_id", "required_subject_id", "created_at"}))

	structures, err := repo.ListByFilter(context.Background(), models.CurriculumFilter{})
	require.NoError(t, err)
	assert.Empty(t, structures)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newCurriculumMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectExec("INSERT INTO curriculum_structures").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	structure := &models.CurriculumStructure{
		CourseName: "Computer Science",
		MajorName:  "Software",
		Term:       models.TermFirst,
		SubjectID:  "CS101",
	}
	err := repo.Upsert(context.Background(), structure)
	require.NoError(t, err)
	assert.Equal(t, "Computer_Science-Software-CS101-S1", structure.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
