package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
)

type seedStudentWriter interface {
	Create(ctx context.Context, student *models.Student) error
}

type seedSubjectWriter interface {
	Create(ctx context.Context, subject *models.Subject) error
}

type seedCurriculumWriter interface {
	Upsert(ctx context.Context, structure *models.CurriculumStructure) error
}

type seedLedgerWriter interface {
	Create(ctx context.Context, registration *models.Registration) error
}

// SeedStudent mirrors one student entry of the import dataset.
type SeedStudent struct {
	ID            string `json:"id"`
	Prefix        string `json:"prefix"`
	FirstName     string `json:"fname"`
	LastName      string `json:"lname"`
	BirthDate     string `json:"birth_date"`
	CurrentSchool string `json:"current_school"`
	Email         string `json:"email"`
}

// SeedSubject mirrors one catalog entry of the import dataset.
type SeedSubject struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Credit           int     `json:"credit"`
	Teacher          *string `json:"teacher"`
	RequiredBeforeID *string `json:"requiredBeforeId"`
}

// SeedStructure mirrors one curriculum-structure entry of the import
// dataset. SubjectID names the member subject of the slot.
type SeedStructure struct {
	CourseName        string  `json:"course_name"`
	MajorName         string  `json:"major_name"`
	OpenTerm          string  `json:"open_term"`
	SubjectID         string  `json:"subject_id"`
	RequiredSubjectID *string `json:"required_subject_id"`
}

// SeedRegistration mirrors one historical ledger entry of the import
// dataset. Grades may be null.
type SeedRegistration struct {
	StudentID    string  `json:"studentId"`
	SubjectID    string  `json:"subjectId"`
	Term         string  `json:"term"`
	AcademicYear int     `json:"academicYear"`
	Grade        *string `json:"grade"`
}

// SeedDataset is the shape of the trusted bulk-load file.
type SeedDataset struct {
	Students           []SeedStudent      `json:"students"`
	Subjects           []SeedSubject      `json:"subjects"`
	SubjectStructures  []SeedStructure    `json:"subject_structures"`
	RegisteredSubjects []SeedRegistration `json:"registered_subjects"`
}

// SeedService loads a trusted historical dataset straight through the
// repositories. This path intentionally bypasses the eligibility engine.
type SeedService struct {
	students   seedStudentWriter
	subjects   seedSubjectWriter
	curriculum seedCurriculumWriter
	ledger     seedLedgerWriter
	logger     *zap.Logger
}

// NewSeedService constructs SeedService.
func NewSeedService(students seedStudentWriter, subjects seedSubjectWriter, curriculum seedCurriculumWriter, ledger seedLedgerWriter, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{students: students, subjects: subjects, curriculum: curriculum, ledger: ledger, logger: logger}
}

// Load imports the dataset in dependency order: students and subjects
// first, then curriculum structures, then ledger entries. Curriculum rows
// are keyed deterministically so re-running the seed is idempotent.
func (s *SeedService) Load(ctx context.Context, dataset SeedDataset) error {
	for _, entry := range dataset.Students {
		birthDate, err := time.Parse("2006-01-02", entry.BirthDate)
		if err != nil {
			return fmt.Errorf("student %s: invalid birth_date %q: %w", entry.ID, entry.BirthDate, err)
		}
		student := &models.Student{
			ID:            entry.ID,
			Prefix:        entry.Prefix,
			FirstName:     entry.FirstName,
			LastName:      entry.LastName,
			BirthDate:     birthDate,
			CurrentSchool: entry.CurrentSchool,
			Email:         entry.Email,
		}
		if err := s.students.Create(ctx, student); err != nil {
			return fmt.Errorf("seed student %s: %w", entry.ID, err)
		}
	}
	s.logger.Info("seeded students", zap.Int("count", len(dataset.Students)))

	for _, entry := range dataset.Subjects {
		subject := &models.Subject{
			ID:               entry.ID,
			Name:             entry.Name,
			Credit:           entry.Credit,
			Teacher:          entry.Teacher,
			RequiredBeforeID: entry.RequiredBeforeID,
		}
		if err := s.subjects.Create(ctx, subject); err != nil {
			return fmt.Errorf("seed subject %s: %w", entry.ID, err)
		}
	}
	s.logger.Info("seeded subjects", zap.Int("count", len(dataset.Subjects)))

	for _, entry := range dataset.SubjectStructures {
		term, ok := models.ParseTerm(entry.OpenTerm)
		if !ok {
			return fmt.Errorf("structure %s/%s: invalid term %q", entry.CourseName, entry.MajorName, entry.OpenTerm)
		}
		structure := &models.CurriculumStructure{
			CourseName:        entry.CourseName,
			MajorName:         entry.MajorName,
			Term:              term,
			SubjectID:         entry.SubjectID,
			RequiredSubjectID: entry.RequiredSubjectID,
		}
		if err := s.curriculum.Upsert(ctx, structure); err != nil {
			return fmt.Errorf("seed structure %s: %w", structure.StructureKey(), err)
		}
	}
	s.logger.Info("seeded curriculum structures", zap.Int("count", len(dataset.SubjectStructures)))

	for _, entry := range dataset.RegisteredSubjects {
		term, ok := models.ParseTerm(entry.Term)
		if !ok {
			return fmt.Errorf("registration %s/%s: invalid term %q", entry.StudentID, entry.SubjectID, entry.Term)
		}
		var grade *models.Grade
		if entry.Grade != nil {
			g := models.Grade(*entry.Grade)
			if !g.Valid() {
				return fmt.Errorf("registration %s/%s: invalid grade %q", entry.StudentID, entry.SubjectID, *entry.Grade)
			}
			grade = &g
		}
		registration := &models.Registration{
			StudentID:    entry.StudentID,
			SubjectID:    entry.SubjectID,
			Term:         term,
			AcademicYear: entry.AcademicYear,
			Grade:        grade,
		}
		if err := s.ledger.Create(ctx, registration); err != nil {
			return fmt.Errorf("seed registration %s/%s: %w", entry.StudentID, entry.SubjectID, err)
		}
	}
	s.logger.Info("seeded registrations", zap.Int("count", len(dataset.RegisteredSubjects)))

	return nil
}
