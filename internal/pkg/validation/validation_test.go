package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alvaro/studentreg/internal/app/models"
)

func TestIsValidDNI(t *testing.T) {
	tests := []struct {
		name string
		dni  string
		want bool
	}{
		{"valid checksum Z", "12345678Z", true},
		{"valid checksum C", "19024608C", true},
		{"valid checksum T", "29482182T", true},
		{"all zeros maps to T", "00000000T", true},
		{"wrong checksum letter", "29482182Y", false},
		{"checksum off by one position", "12345678S", false},
		{"lowercase letter", "12345678z", false},
		{"seven digits", "1234567Z", false},
		{"nine digits", "123456789Z", false},
		{"letter not in checksum table", "12345678I", false},
		{"letter first", "Z12345678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidDNI(tt.dni))
		})
	}
}

func TestIsValidStudentName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain name", "Juan Alberto", true},
		{"accented name", "María José Muñoz", true},
		{"single letter", "A", true},
		{"max length", strings.Repeat("a", 100), true},
		{"too long", strings.Repeat("a", 101), false},
		{"empty", "", false},
		{"blank", "   ", false},
		{"digits", "Juan 2", false},
		{"punctuation", "Juan-Alberto", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidStudentName(tt.input))
		})
	}
}

func TestIsValidBirthdate(t *testing.T) {
	assert.True(t, IsValidBirthdate(time.Date(1993, time.October, 26, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsValidBirthdate(time.Now().Add(-time.Hour)))
	assert.False(t, IsValidBirthdate(time.Time{}))
	assert.False(t, IsValidBirthdate(time.Now().Add(24*time.Hour)))
}

func TestIsValidPostalCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"00000", true},
		{"29010", true},
		{"44999", true},
		{"50000", true},
		{"52999", true},
		{"45000", false},
		{"49999", false},
		{"53000", false},
		{"99999", false},
		{"2901", false},
		{"290100", false},
		{"2901A", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPostalCode(tt.code))
		})
	}
}

func TestIsValidNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"678987654", true},
		{"798749945", true},
		{"812345678", true},
		{"912345678", true},
		{"512345678", false},
		{"012345678", false},
		{"67898765", false},
		{"6789876543", false},
		{"67898765a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidNumber(tt.number))
		})
	}
}

func TestIsValidStreetAddressAndCity(t *testing.T) {
	assert.True(t, IsValidStreetAddress("Plaza Nueva nº 123"))
	assert.True(t, IsValidStreetAddress(strings.Repeat("a", 255)))
	assert.False(t, IsValidStreetAddress(strings.Repeat("a", 256)))
	assert.False(t, IsValidStreetAddress("  "))

	assert.True(t, IsValidCity("Málaga"))
	assert.True(t, IsValidCity(strings.Repeat("a", 50)))
	assert.False(t, IsValidCity(strings.Repeat("a", 51)))
	assert.False(t, IsValidCity(""))
}

func TestIsValidCourseFields(t *testing.T) {
	assert.True(t, IsValidCourseName("Desarrollo en Aplicaciones Multiplataforma"))
	assert.True(t, IsValidCourseName(strings.Repeat("a", 80)))
	assert.False(t, IsValidCourseName(strings.Repeat("a", 81)))
	assert.False(t, IsValidCourseName(" "))

	assert.True(t, IsValidSchool("IES Pablo Picasso"))
	assert.False(t, IsValidSchool(strings.Repeat("a", 81)))
	assert.False(t, IsValidSchool(""))
}

func TestAggregateValidators(t *testing.T) {
	student := &models.Student{
		DNI:       "29482182T",
		Name:      "Juan Alberto García",
		Birthdate: time.Date(1993, time.October, 26, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, IsValidStudent(student))

	student.DNI = "29482182Y"
	assert.False(t, IsValidStudent(student))
	assert.False(t, IsValidStudent(nil))

	address := &models.Address{StreetAddress: "Plaza Nueva nº 123", City: "Málaga", PostalCode: "29010"}
	assert.True(t, IsValidAddress(address))
	address.PostalCode = "53000"
	assert.False(t, IsValidAddress(address))
	assert.False(t, IsValidAddress(nil))

	course := &models.Course{Name: "DAM", School: "IES Pablo Picasso", StartingYear: 2025}
	assert.True(t, IsValidCourse(course))
	course.School = " "
	assert.False(t, IsValidCourse(course))
	assert.False(t, IsValidCourse(nil))

	phone := &models.PhoneNumber{Number: "678987654"}
	assert.True(t, IsValidPhoneNumber(phone))
	phone.Number = "178987654"
	assert.False(t, IsValidPhoneNumber(phone))
	assert.False(t, IsValidPhoneNumber(nil))
}
