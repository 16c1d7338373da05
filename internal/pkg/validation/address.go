package validation

import (
	"regexp"

	"github.com/alvaro/studentreg/internal/app/models"
)

const (
	streetAddressMaxLength = 255
	cityMaxLength          = 50
)

var (
	// Valid Spanish postal codes: 00000-44999 and 50000-52999.
	postalCodePattern = regexp.MustCompile(`^([0-4]\d{4}|5[012]\d{3})$`)

	streetAddressRule = StringRule{MaxLen: streetAddressMaxLength, NotBlank: true}
	cityRule          = StringRule{MaxLen: cityMaxLength, NotBlank: true}
)

// IsValidStreetAddress reports whether street is non-blank and at most 255
// characters long.
func IsValidStreetAddress(street string) bool {
	return streetAddressRule.Valid(street)
}

// IsValidCity reports whether city is non-blank and at most 50 characters
// long.
func IsValidCity(city string) bool {
	return cityRule.Valid(city)
}

// IsValidPostalCode reports whether postalCode is five digits inside the
// Spanish postal code ranges.
func IsValidPostalCode(postalCode string) bool {
	return postalCodePattern.MatchString(postalCode)
}

// IsValidAddress reports whether every validated Address field is valid.
func IsValidAddress(address *models.Address) bool {
	return address != nil &&
		IsValidStreetAddress(address.StreetAddress) &&
		IsValidCity(address.City) &&
		IsValidPostalCode(address.PostalCode)
}
