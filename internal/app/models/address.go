package models

// Address represents a student's postal address. An address belongs to at
// most one student and follows its owner's lifecycle: it is saved with the
// student and removed when the student is deleted or the reference cleared.
type Address struct {
	ID            int64  `json:"id" db:"id"`
	StreetAddress string `json:"streetAddress" db:"street_address"`
	City          string `json:"city" db:"city"`
	PostalCode    string `json:"postalCode" db:"postal_code"`
}

// IsNew reports whether the address has been persisted yet.
func (a *Address) IsNew() bool {
	return a.ID == 0
}
