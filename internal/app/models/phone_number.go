package models

// PhoneNumber represents a phone number shared by any number of students.
// The nine digit number is the natural key. A phone number with no students
// left is legal and is not garbage-collected.
type PhoneNumber struct {
	ID     int64  `json:"id" db:"id"`
	Number string `json:"number" db:"phone_number"`

	// Reverse side of the student association (populated on load)
	Students []*Student `json:"students,omitempty"`
}

// IsNew reports whether the phone number has been persisted yet.
func (p *PhoneNumber) IsNew() bool {
	return p.ID == 0
}

// HasStudent reports whether the student with the given DNI is associated
// with this number.
func (p *PhoneNumber) HasStudent(dni string) bool {
	for _, s := range p.Students {
		if s.DNI == dni {
			return true
		}
	}
	return false
}
