package models

import "time"

// Student represents a registered student. The DNI is the natural key; the
// surrogate ID is assigned by the database on first save.
type Student struct {
	ID        int64     `json:"id" db:"id"`
	DNI       string    `json:"dni" db:"dni"`
	Name      string    `json:"name" db:"name"`
	Birthdate time.Time `json:"birthdate" db:"birthdate"`

	// Relations (populated on load)
	Address      *Address       `json:"address,omitempty"`      // Owned one-to-one, saved and deleted with the student
	PhoneNumbers []*PhoneNumber `json:"phoneNumbers,omitempty"` // Many-to-many, saved through the student
	Course       *Course        `json:"course,omitempty"`       // Many-to-one reference, never cascaded
}

// IsNew reports whether the student has been persisted yet.
func (s *Student) IsNew() bool {
	return s.ID == 0
}

// AddPhoneNumber links a phone number on both sides of the association.
// Linking an already associated number is a no-op. Phone numbers are matched
// by their natural key, not by pointer identity, because the two sides may
// have been loaded independently.
func (s *Student) AddPhoneNumber(phone *PhoneNumber) {
	if phone == nil || s.HasPhoneNumber(phone.Number) {
		return
	}
	s.PhoneNumbers = append(s.PhoneNumbers, phone)
	if !phone.HasStudent(s.DNI) {
		phone.Students = append(phone.Students, s)
	}
}

// RemovePhoneNumber unlinks a phone number on both sides of the association.
// Removing a number that was never linked is a no-op.
func (s *Student) RemovePhoneNumber(phone *PhoneNumber) {
	if phone == nil {
		return
	}
	for i, p := range s.PhoneNumbers {
		if p.Number == phone.Number {
			s.PhoneNumbers = append(s.PhoneNumbers[:i], s.PhoneNumbers[i+1:]...)
			break
		}
	}
	for i, st := range phone.Students {
		if st.DNI == s.DNI {
			phone.Students = append(phone.Students[:i], phone.Students[i+1:]...)
			break
		}
	}
}

// HasPhoneNumber reports whether the student is associated with the number.
func (s *Student) HasPhoneNumber(number string) bool {
	for _, p := range s.PhoneNumbers {
		if p.Number == number {
			return true
		}
	}
	return false
}
