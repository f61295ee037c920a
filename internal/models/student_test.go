package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	at, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return at
}

func TestStudentAgeAt(t *testing.T) {
	cases := []struct {
		name      string
		birthDate string
		at        string
		age       int
	}{
		{"birthday today", "2009-06-01", "2024-06-01", 15},
		{"day before birthday", "2009-06-02", "2024-06-01", 14},
		{"day after birthday", "2009-05-31", "2024-06-01", 15},
		{"earlier month", "2009-12-31", "2024-06-01", 14},
		{"leap day birth, non-leap year", "2008-02-29", "2024-02-28", 15},
		{"leap day birth, on leap day", "2008-02-29", "2024-02-29", 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			student := Student{BirthDate: date(tc.birthDate)}
			assert.Equal(t, tc.age, student.AgeAt(date(tc.at)))
		})
	}
}

func TestStudentFullName(t *testing.T) {
	assert.Equal(t, "Ms. Jane Doe", Student{Prefix: "Ms.", FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane Doe", Student{FirstName: "Jane", LastName: "Doe"}.FullName())
}
