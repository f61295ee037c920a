package models

import (
	"strings"
	"time"
)

// Term identifies one of the two academic half-year periods.
type Term string

const (
	TermFirst  Term = "S1"
	TermSecond Term = "S2"
)

// Valid reports whether the term is one of the two defined values.
func (t Term) Valid() bool {
	return t == TermFirst || t == TermSecond
}

// ParseTerm normalises raw input into a Term.
func ParseTerm(raw string) (Term, bool) {
	t := Term(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// Grade is one of the eight ordered letter-grade values. An ungraded
// registration carries a NULL grade, modelled as a nil *Grade.
type Grade string

const (
	GradeA     Grade = "A"
	GradeBPlus Grade = "B_PLUS"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C_PLUS"
	GradeC     Grade = "C"
	GradeDPlus Grade = "D_PLUS"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Valid reports whether the grade is one of the defined letter values.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeBPlus, GradeB, GradeCPlus, GradeC, GradeDPlus, GradeD, GradeF:
		return true
	}
	return false
}

// Passing reports whether the grade counts as passed for prerequisite
// purposes. F is the failing grade.
func (g Grade) Passing() bool {
	return g.Valid() && g != GradeF
}

// Registration is a ledger entry recording one registration attempt of a
// student for a subject in a term. At most one row may exist per
// (student, subject, academic year, term) key.
type Registration struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	Term         Term      `db:"term" json:"term"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	Grade        *Grade    `db:"grade" json:"grade"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RegistrationDetail enriches Registration with student and subject info.
type RegistrationDetail struct {
	Registration
	StudentPrefix    string `db:"student_prefix" json:"-"`
	StudentFirstName string `db:"student_first_name" json:"-"`
	StudentLastName  string `db:"student_last_name" json:"-"`
	StudentEmail     string `db:"student_email" json:"student_email"`
	SubjectName      string `db:"subject_name" json:"subject_name"`
}

// StudentName renders the student display name for roster views.
func (d RegistrationDetail) StudentName() string {
	name := d.StudentFirstName + " " + d.StudentLastName
	if d.StudentPrefix != "" {
		return d.StudentPrefix + " " + name
	}
	return name
}

// RegistrationFilter provides filters for listing ledger entries.
type RegistrationFilter struct {
	StudentID    string
	SubjectID    string
	Term         Term
	AcademicYear int
	Page         int
	PageSize     int
}

// EligibilityReason tags a failed eligibility decision. Exactly one reason
// is reported; evaluation order fixes the precedence.
type EligibilityReason string

const (
	ReasonNotFound           EligibilityReason = "NOT_FOUND"
	ReasonUnderage           EligibilityReason = "UNDERAGE"
	ReasonPrerequisiteNotMet EligibilityReason = "PREREQUISITE_NOT_MET"
	ReasonDuplicate          EligibilityReason = "DUPLICATE"
)

// EligibilityResult is the outcome of one registration-eligibility decision.
type EligibilityResult struct {
	Eligible bool              `json:"eligible"`
	Reason   EligibilityReason `json:"reason,omitempty"`
}
