package models

import (
	"strings"
	"time"
)

// CurriculumStructure maps a subject into a (course, major, term) curriculum
// slot. SubjectID carries the membership; RequiredSubjectID only mirrors the
// subject's prerequisite for display.
type CurriculumStructure struct {
	ID                string    `db:"id" json:"id"`
	CourseName        string    `db:"course_name" json:"course_name"`
	MajorName         string    `db:"major_name" json:"major_name"`
	Term              Term      `db:"term" json:"term"`
	SubjectID         string    `db:"subject_id" json:"subject_id"`
	RequiredSubjectID *string   `db:"required_subject_id" json:"required_subject_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// StructureKey derives the stable composite id so repeated seeding of the
// same structure row is idempotent.
func (cs CurriculumStructure) StructureKey() string {
	subject := cs.SubjectID
	if subject == "" {
		subject = "NONE"
	}
	parts := []string{cs.CourseName, cs.MajorName, subject, string(cs.Term)}
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, " ", "_")
	}
	return strings.Join(parts, "-")
}

// CurriculumFilter selects structures for availability resolution. All
// fields are optional; an empty filter means the whole catalog.
type CurriculumFilter struct {
	Course string
	Major  string
	Term   Term
}

// Empty reports whether no filter criteria were supplied.
func (f CurriculumFilter) Empty() bool {
	return f.Course == "" && f.Major == "" && f.Term == ""
}
