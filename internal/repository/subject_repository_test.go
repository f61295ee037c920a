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

func newSubjectMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSubjectMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "credit", "teacher", "required_before_id", "created_at", "updated_at"}).
		AddRow("CS201", "Data Structures", 3, "Dr. Smith", "CS101", time.Now(), time.Now())
	mock.ExpectQuery("FROM subjects WHERE id").
		WithArgs("CS201").
		WillReturnRows(rows)

	subject, err := repo.FindByID(context.Background(), "CS201")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", subject.Name)
	require.NotNil(t, subject.RequiredBeforeID)
	assert.Equal(t, "CS101", *subject.RequiredBeforeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newSubjectMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "credit", "teacher", "required_before_id", "created_at", "updated_at", "required_before_name"}).
		AddRow("CS101", "Intro to Programming", 3, nil, nil, time.Now(), time.Now(), nil).
		AddRow("CS201", "Data Structures", 3, "Dr. Smith", "CS101", time.Now(), time.Now(), "Intro to Programming")
	mock.ExpectQuery("LEFT JOIN subjects p ON").
		WillReturnRows(rows)

	subjects, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Nil(t, subjects[0].RequiredBeforeName)
	require.NotNil(t, subjects[1].RequiredBeforeName)
	assert.Equal(t, "Intro to Programming", *subjects[1].RequiredBeforeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubjectMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Subject{ID: "CS101", Name: "Intro to Programming", Credit: 3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
