package validation

import "github.com/alvaro/studentreg/internal/app/models"

const (
	courseNameMaxLength = 80
	schoolMaxLength     = 80
)

var (
	courseNameRule = StringRule{MaxLen: courseNameMaxLength, NotBlank: true}
	schoolRule     = StringRule{MaxLen: schoolMaxLength, NotBlank: true}
)

// IsValidCourseName reports whether name is non-blank and at most 80
// characters long.
func IsValidCourseName(name string) bool {
	return courseNameRule.Valid(name)
}

// IsValidSchool reports whether school is non-blank and at most 80
// characters long.
func IsValidSchool(school string) bool {
	return schoolRule.Valid(school)
}

// IsValidCourse reports whether every validated Course field is valid.
func IsValidCourse(course *models.Course) bool {
	return course != nil &&
		IsValidCourseName(course.Name) &&
		IsValidSchool(course.School)
}
