package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type mockGradeLedger struct {
	registrations map[string]*models.Registration
	updates       int
	lastGrade     *models.Grade
	updateErr     error
}

func (m *mockGradeLedger) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if r, ok := m.registrations[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeLedger) UpdateGrade(ctx context.Context, id string, grade *models.Grade) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	m.lastGrade = grade
	if r, ok := m.registrations[id]; ok {
		r.Grade = grade
	}
	return nil
}

func TestAssignGradeSuccess(t *testing.T) {
	ledger := &mockGradeLedger{registrations: map[string]*models.Registration{
		"r1": {ID: "r1", StudentID: "s1", SubjectID: "CS101"},
	}}
	invalidator := &mockInvalidator{}
	svc := NewGradeService(ledger, invalidator, zap.NewNop())

	registration, err := svc.AssignGrade(context.Background(), "r1", AssignGradeRequest{Grade: gradePtr(models.GradeBPlus)})
	require.NoError(t, err)
	require.NotNil(t, registration.Grade)
	assert.Equal(t, models.GradeBPlus, *registration.Grade)
	assert.Equal(t, 1, ledger.updates)
	assert.Equal(t, []string{"s1"}, invalidator.invalidated)
}

func TestAssignGradeIdempotent(t *testing.T) {
	ledger := &mockGradeLedger{registrations: map[string]*models.Registration{
		"r1": {ID: "r1", StudentID: "s1", SubjectID: "CS101", Grade: gradePtr(models.GradeB)},
	}}
	invalidator := &mockInvalidator{}
	svc := NewGradeService(ledger, invalidator, zap.NewNop())

	registration, err := svc.AssignGrade(context.Background(), "r1", AssignGradeRequest{Grade: gradePtr(models.GradeB)})
	require.NoError(t, err)
	assert.Equal(t, models.GradeB, *registration.Grade)
	assert.Equal(t, 0, ledger.updates)
	assert.Empty(t, invalidator.invalidated)
}

func TestAssignGradeOverwrite(t *testing.T) {
	ledger := &mockGradeLedger{registrations: map[string]*models.Registration{
		"r1": {ID: "r1", StudentID: "s1", SubjectID: "CS101", Grade: gradePtr(models.GradeF)},
	}}
	invalidator := &mockInvalidator{}
	svc := NewGradeService(ledger, invalidator, zap.NewNop())

	registration, err := svc.AssignGrade(context.Background(), "r1", AssignGradeRequest{Grade: gradePtr(models.GradeC)})
	require.NoError(t, err)
	assert.Equal(t, models.GradeC, *registration.Grade)
	assert.Equal(t, []string{"s1"}, invalidator.invalidated)
}

func TestAssignGradeClear(t *testing.T) {
	ledger := &mockGradeLedger{registrations: map[string]*models.Registration{
		"r1": {ID: "r1", StudentID: "s1", SubjectID: "CS101", Grade: gradePtr(models.GradeA)},
	}}
	svc := NewGradeService(ledger, &mockInvalidator{}, zap.NewNop())

	registration, err := svc.AssignGrade(context.Background(), "r1", AssignGradeRequest{Grade: nil})
	require.NoError(t, err)
	assert.Nil(t, registration.Grade)
	assert.Equal(t, 1, ledger.updates)
	assert.Nil(t, ledger.lastGrade)
}

func TestAssignGradeInvalidValue(t *testing.T) {
	ledger := &mockGradeLedger{}
	svc := NewGradeService(ledger, &mockInvalidator{}, zap.NewNop())

	_, err := svc.AssignGrade(context.Background(), "r1", AssignGradeRequest{Grade: gradePtr(models.Grade("E"))})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, 0, ledger.updates)
}

func TestAssignGradeNotFound(t *testing.T) {
	svc := NewGradeService(&mockGradeLedger{}, &mockInvalidator{}, zap.NewNop())

	_, err := svc.AssignGrade(context.Background(), "missing", AssignGradeRequest{Grade: gradePtr(models.GradeA)})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
