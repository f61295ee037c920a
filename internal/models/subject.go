package models

import "time"

// Subject represents an academic subject in the catalog.
type Subject struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Credit           int       `db:"credit" json:"credit"`
	Teacher          *string   `db:"teacher" json:"teacher,omitempty"`
	RequiredBeforeID *string   `db:"required_before_id" json:"required_before_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail enriches Subject with the resolved prerequisite name.
type SubjectDetail struct {
	Subject
	RequiredBeforeName *string `db:"required_before_name" json:"required_before_name,omitempty"`
}

// AvailableSubject is a catalog entry annotated for a specific student at
// browse time. The eligible flag is advisory only; registration re-checks.
type AvailableSubject struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Credit           int     `json:"credit"`
	Teacher          *string `json:"teacher,omitempty"`
	PrerequisiteID   *string `json:"prerequisite_id,omitempty"`
	PrerequisiteName *string `json:"prerequisite_name,omitempty"`
	Eligible         bool    `json:"eligible"`
}
