package validation

import (
	"regexp"

	"github.com/alvaro/studentreg/internal/app/models"
)

// Spanish phone numbers: nine digits starting with 6, 7, 8 or 9.
var phoneNumberPattern = regexp.MustCompile(`^[6789]\d{8}$`)

// IsValidNumber reports whether number is a well-formed nine digit Spanish
// phone number.
func IsValidNumber(number string) bool {
	return phoneNumberPattern.MatchString(number)
}

// IsValidPhoneNumber reports whether every validated PhoneNumber field is
// valid.
func IsValidPhoneNumber(phone *models.PhoneNumber) bool {
	return phone != nil && IsValidNumber(phone.Number)
}
