package models

// Course represents a course given at a school. The (name, school,
// startingYear) triple is treated as unique by convention; the database does
// not enforce it.
type Course struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	School       string `json:"school" db:"school"`
	StartingYear int    `json:"startingYear" db:"starting_year"`
}

// IsNew reports whether the course has been persisted yet.
func (c *Course) IsNew() bool {
	return c.ID == 0
}
