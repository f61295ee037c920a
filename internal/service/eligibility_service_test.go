package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
)

func gradePtr(g models.Grade) *models.Grade {
	return &g
}

func strPtr(s string) *string {
	return &s
}

type mockStudentStore struct {
	students map[string]*models.Student
}

func (m *mockStudentStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockSubjectStore struct {
	subjects map[string]*models.Subject
}

func (m *mockSubjectStore) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockAttemptStore struct {
	attempts map[string][]models.Registration
	existing map[string]bool
}

func (m *mockAttemptStore) ListByStudentAndSubject(ctx context.Context, studentID, subjectID string) ([]models.Registration, error) {
	return m.attempts[studentID+"/"+subjectID], nil
}

func (m *mockAttemptStore) ExistsByKey(ctx context.Context, studentID, subjectID string, academicYear int, term models.Term) (bool, error) {
	if m.existing == nil {
		return false, nil
	}
	return m.existing[studentID+"/"+subjectID], nil
}

func fixedClock(date string) func() time.Time {
	at, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return at }
}

func newEligibilityFixture(students *mockStudentStore, subjects *mockSubjectStore, attempts *mockAttemptStore) *EligibilityService {
	return NewEligibilityService(students, subjects, attempts, zap.NewNop()).WithClock(fixedClock("2024-06-01"))
}

func TestEvaluateStudentNotFound(t *testing.T) {
	svc := newEligibilityFixture(&mockStudentStore{}, &mockSubjectStore{}, &mockAttemptStore{})

	result, err := svc.Evaluate(context.Background(), "missing", "CS101", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, models.ReasonNotFound, result.Reason)
}

func TestEvaluateSubjectNotFound(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2000-01-01")},
	}}
	svc := newEligibilityFixture(students, &mockSubjectStore{}, &mockAttemptStore{})

	result, err := svc.Evaluate(context.Background(), "s1", "missing", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, models.ReasonNotFound, result.Reason)
}

func TestEvaluateUnderage(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2010-01-01")},
	}}
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS101": {ID: "CS101", Name: "Intro to Programming"},
	}}
	svc := newEligibilityFixture(students, subjects, &mockAttemptStore{})

	result, err := svc.Evaluate(context.Background(), "s1", "CS101", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, models.ReasonUnderage, result.Reason)
}

func TestEvaluateAgeBoundary(t *testing.T) {
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS101": {ID: "CS101"},
	}}

	cases := []struct {
		name      string
		birthDate string
		eligible  bool
	}{
		{"fifteenth birthday today", "2009-06-01", true},
		{"birthday tomorrow", "2009-06-02", false},
		{"birthday yesterday", "2009-05-31", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			students := &mockStudentStore{students: map[string]*models.Student{
				"s1": {ID: "s1", BirthDate: mustDate(tc.birthDate)},
			}}
			svc := newEligibilityFixture(students, subjects, &mockAttemptStore{})

			result, err := svc.Evaluate(context.Background(), "s1", "CS101", models.TermFirst, 2024)
			require.NoError(t, err)
			assert.Equal(t, tc.eligible, result.Eligible)
			if !tc.eligible {
				assert.Equal(t, models.ReasonUnderage, result.Reason)
			}
		})
	}
}

func TestEvaluatePrerequisiteNotMet(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2000-01-01")},
	}}
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS201": {ID: "CS201", RequiredBeforeID: strPtr("CS101")},
	}}
	svc := newEligibilityFixture(students, subjects, &mockAttemptStore{})

	result, err := svc.Evaluate(context.Background(), "s1", "CS201", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, models.ReasonPrerequisiteNotMet, result.Reason)
}

func TestEvaluatePrerequisiteAttemptOutcomes(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2000-01-01")},
	}}
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS201": {ID: "CS201", RequiredBeforeID: strPtr("CS101")},
	}}

	cases := []struct {
		name     string
		grade    *models.Grade
		eligible bool
	}{
		{"ungraded attempt", nil, false},
		{"failed attempt", gradePtr(models.GradeF), false},
		{"passed with B", gradePtr(models.GradeB), true},
		{"passed with D", gradePtr(models.GradeD), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attempts := &mockAttemptStore{attempts: map[string][]models.Registration{
				"s1/CS101": {{StudentID: "s1", SubjectID: "CS101", Grade: tc.grade}},
			}}
			svc := newEligibilityFixture(students, subjects, attempts)

			result, err := svc.Evaluate(context.Background(), "s1", "CS201", models.TermFirst, 2024)
			require.NoError(t, err)
			assert.Equal(t, tc.eligible, result.Eligible)
			if !tc.eligible {
				assert.Equal(t, models.ReasonPrerequisiteNotMet, result.Reason)
			}
		})
	}
}

func TestEvaluatePrerequisiteRetakeAfterFail(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2000-01-01")},
	}}
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS201": {ID: "CS201", RequiredBeforeID: strPtr("CS101")},
	}}
	attempts := &mockAttemptStore{attempts: map[string][]models.Registration{
		"s1/CS101": {
			{StudentID: "s1", SubjectID: "CS101", AcademicYear: 2022, Grade: gradePtr(models.GradeF)},
			{StudentID: "s1", SubjectID: "CS101", AcademicYear: 2023, Grade: gradePtr(models.GradeCPlus)},
		},
	}}
	svc := newEligibilityFixture(students, subjects, attempts)

	result, err := svc.Evaluate(context.Background(), "s1", "CS201", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
}

func TestEvaluateDuplicate(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2000-01-01")},
	}}
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS101": {ID: "CS101"},
	}}
	attempts := &mockAttemptStore{existing: map[string]bool{"s1/CS101": true}}
	svc := newEligibilityFixture(students, subjects, attempts)

	result, err := svc.Evaluate(context.Background(), "s1", "CS101", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, models.ReasonDuplicate, result.Reason)
}

func TestEvaluateReportsAgeBeforePrerequisite(t *testing.T) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"s1": {ID: "s1", BirthDate: mustDate("2012-01-01")},
	}}
	subjects := &mockSubjectStore{subjects: map[string]*models.Subject{
		"CS201": {ID: "CS201", RequiredBeforeID: strPtr("CS101")},
	}}
	attempts := &mockAttemptStore{existing: map[string]bool{"s1/CS201": true}}
	svc := newEligibilityFixture(students, subjects, attempts)

	result, err := svc.Evaluate(context.Background(), "s1", "CS201", models.TermFirst, 2024)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonUnderage, result.Reason)
}

func TestPrerequisiteSatisfiedWithoutPrerequisite(t *testing.T) {
	svc := newEligibilityFixture(&mockStudentStore{}, &mockSubjectStore{}, &mockAttemptStore{})

	ok, err := svc.PrerequisiteSatisfied(context.Background(), "s1", &models.Subject{ID: "CS101"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func mustDate(s string) time.Time {
	at, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return at
}
