package validation

import (
	"regexp"
	"strconv"
	"time"

	"github.com/alvaro/studentreg/internal/app/models"
)

// dniLetters is the official checksum table for Spanish national IDs,
// ordered by the numeric part modulo 23. The letters I, O and U are not
// used.
const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

const studentNameMaxLength = 100

var (
	dniPattern = regexp.MustCompile(`^\d{8}[` + dniLetters + `]$`)

	// Alphabetic characters of the Spanish alphabet, accents included, plus
	// whitespace.
	studentNamePattern = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚÜÑáéíóúüñ\s]+$`)

	studentNameRule = StringRule{MaxLen: studentNameMaxLength, NotBlank: true, Pattern: studentNamePattern}
)

// IsValidDNI reports whether dni is a well-formed Spanish national ID:
// eight digits followed by the checksum letter derived from the numeric
// part modulo 23.
func IsValidDNI(dni string) bool {
	if !dniPattern.MatchString(dni) {
		return false
	}

	number, err := strconv.Atoi(dni[:len(dni)-1])
	if err != nil {
		return false
	}

	return dniLetters[number%len(dniLetters)] == dni[len(dni)-1]
}

// IsValidStudentName reports whether name is a non-blank alphabetic string
// of at most 100 characters. Spanish accented characters and spaces are
// allowed.
func IsValidStudentName(name string) bool {
	return studentNameRule.Valid(name)
}

// IsValidBirthdate reports whether birthdate is set and strictly earlier
// than the current date.
func IsValidBirthdate(birthdate time.Time) bool {
	return !birthdate.IsZero() && birthdate.Before(time.Now())
}

// IsValidStudent reports whether every validated Student field is valid.
func IsValidStudent(student *models.Student) bool {
	return student != nil &&
		IsValidDNI(student.DNI) &&
		IsValidStudentName(student.Name) &&
		IsValidBirthdate(student.Birthdate)
}
