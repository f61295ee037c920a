package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type mockCurriculumStore struct {
	structures []models.CurriculumStructure
	lastFilter models.CurriculumFilter
}

func (m *mockCurriculumStore) ListByFilter(ctx context.Context, filter models.CurriculumFilter) ([]models.CurriculumStructure, error) {
	m.lastFilter = filter
	return m.structures, nil
}

type mockCatalog struct {
	subjects []models.SubjectDetail
}

func (m *mockCatalog) ListAll(ctx context.Context) ([]models.SubjectDetail, error) {
	return m.subjects, nil
}

type mockRegisteredLister struct {
	ids []string
}

func (m *mockRegisteredLister) ListSubjectIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	return m.ids, nil
}

func catalogFixture() *mockCatalog {
	return &mockCatalog{subjects: []models.SubjectDetail{
		{Subject: models.Subject{ID: "CS101", Name: "Intro to Programming", Credit: 3}},
		{
			Subject:            models.Subject{ID: "CS201", Name: "Data Structures", Credit: 3, RequiredBeforeID: strPtr("CS101")},
			RequiredBeforeName: strPtr("Intro to Programming"),
		},
		{Subject: models.Subject{ID: "MA101", Name: "Calculus I", Credit: 4}},
	}}
}

// The availability flag is computed by the same prerequisite check the
// registration path runs, so wiring a real eligibility engine here keeps the
// two views honest with each other.
func newAvailabilityFixture(attempts *mockAttemptStore, registered *mockRegisteredLister, curriculum *mockCurriculumStore) *AvailabilityService {
	engine := newEligibilityFixture(&mockStudentStore{}, &mockSubjectStore{}, attempts)
	return NewAvailabilityService(curriculum, catalogFixture(), registered, engine, nil, 0, nil, zap.NewNop())
}

func TestAvailableSubjectsFullCatalog(t *testing.T) {
	svc := newAvailabilityFixture(&mockAttemptStore{}, &mockRegisteredLister{}, &mockCurriculumStore{})

	available, err := svc.AvailableSubjects(context.Background(), "s1", models.CurriculumFilter{})
	require.NoError(t, err)
	require.Len(t, available, 3)

	byID := make(map[string]models.AvailableSubject, len(available))
	for _, s := range available {
		byID[s.ID] = s
	}
	assert.True(t, byID["CS101"].Eligible)
	assert.True(t, byID["MA101"].Eligible)
	// CS201 stays listed but flagged: its prerequisite was never passed.
	assert.False(t, byID["CS201"].Eligible)
	assert.Equal(t, "Intro to Programming", *byID["CS201"].PrerequisiteName)
}

func TestAvailableSubjectsAfterPassingPrerequisite(t *testing.T) {
	attempts := &mockAttemptStore{attempts: map[string][]models.Registration{
		"s1/CS101": {{StudentID: "s1", SubjectID: "CS101", Grade: gradePtr(models.GradeB)}},
	}}
	registered := &mockRegisteredLister{ids: []string{"CS101"}}
	svc := newAvailabilityFixture(attempts, registered, &mockCurriculumStore{})

	available, err := svc.AvailableSubjects(context.Background(), "s1", models.CurriculumFilter{})
	require.NoError(t, err)
	require.Len(t, available, 2)
	for _, s := range available {
		assert.NotEqual(t, "CS101", s.ID, "registered subject must be excluded")
		assert.True(t, s.Eligible)
	}
}

func TestAvailableSubjectsFailedPrerequisiteStaysFlagged(t *testing.T) {
	attempts := &mockAttemptStore{attempts: map[string][]models.Registration{
		"s1/CS101": {{StudentID: "s1", SubjectID: "CS101", Grade: gradePtr(models.GradeF)}},
	}}
	registered := &mockRegisteredLister{ids: []string{"CS101"}}
	svc := newAvailabilityFixture(attempts, registered, &mockCurriculumStore{})

	available, err := svc.AvailableSubjects(context.Background(), "s1", models.CurriculumFilter{})
	require.NoError(t, err)
	for _, s := range available {
		if s.ID == "CS201" {
			assert.False(t, s.Eligible)
		}
	}
}

func TestAvailableSubjectsCurriculumFilter(t *testing.T) {
	curriculum := &mockCurriculumStore{structures: []models.CurriculumStructure{
		{CourseName: "Computer Science", MajorName: "Software", Term: models.TermFirst, SubjectID: "CS101"},
	}}
	svc := newAvailabilityFixture(&mockAttemptStore{}, &mockRegisteredLister{}, curriculum)

	filter := models.CurriculumFilter{Course: "Computer Science", Major: "Software", Term: models.TermFirst}
	available, err := svc.AvailableSubjects(context.Background(), "s1", filter)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "CS101", available[0].ID)
	assert.Equal(t, filter, curriculum.lastFilter)
}

func TestAvailableSubjectsEmptyCurriculumSlice(t *testing.T) {
	svc := newAvailabilityFixture(&mockAttemptStore{}, &mockRegisteredLister{}, &mockCurriculumStore{})

	available, err := svc.AvailableSubjects(context.Background(), "s1", models.CurriculumFilter{Course: "Unknown"})
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestAvailableSubjectsInvalidTerm(t *testing.T) {
	svc := newAvailabilityFixture(&mockAttemptStore{}, &mockRegisteredLister{}, &mockCurriculumStore{})

	_, err := svc.AvailableSubjects(context.Background(), "s1", models.CurriculumFilter{Term: models.Term("WINTER")})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCatalog(t *testing.T) {
	svc := newAvailabilityFixture(&mockAttemptStore{}, &mockRegisteredLister{}, &mockCurriculumStore{})

	catalog, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog, 3)
}

func TestInvalidateWithoutCache(t *testing.T) {
	svc := newAvailabilityFixture(&mockAttemptStore{}, &mockRegisteredLister{}, &mockCurriculumStore{})

	assert.NoError(t, svc.Invalidate(context.Background(), "s1"))
}
