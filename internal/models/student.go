package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID            string    `db:"id" json:"id"`
	Prefix        string    `db:"prefix" json:"prefix"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	BirthDate     time.Time `db:"birth_date" json:"birth_date"`
	CurrentSchool string    `db:"current_school" json:"current_school"`
	Email         string    `db:"email" json:"email"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders the display name including the prefix.
func (s Student) FullName() string {
	name := s.FirstName + " " + s.LastName
	if s.Prefix != "" {
		return s.Prefix + " " + name
	}
	return name
}

// AgeAt returns the student's age in whole years at the given instant,
// decremented when the month/day has not been reached yet.
func (s Student) AgeAt(at time.Time) int {
	age := at.Year() - s.BirthDate.Year()
	if at.Month() < s.BirthDate.Month() ||
		(at.Month() == s.BirthDate.Month() && at.Day() < s.BirthDate.Day()) {
		age--
	}
	return age
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	School    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
