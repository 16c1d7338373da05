package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/db"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
	"github.com/alvaro/studentreg/internal/pkg/dberrors"
)

// querier is the subset of pgx shared by the pool and open transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepository handles database operations for students. Saving a
// student cascades to its owned address and phone number associations; the
// referenced course is never cascaded.
type StudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
	}
}

// SaveOrUpdate inserts the student when it has no identifier and fully
// replaces the stored record otherwise. The owned address is saved first,
// new phone numbers are inserted and the association rows are rewritten to
// match the in-memory set, all within one transaction.
func (r *StudentRepository) SaveOrUpdate(ctx context.Context, student *models.Student) (int64, error) {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := saveOwnedAddress(ctx, tx, student.Address); err != nil {
			return err
		}

		var addressID, courseID *int64
		if student.Address != nil {
			addressID = &student.Address.ID
		}
		if student.Course != nil {
			courseID = &student.Course.ID
		}

		if student.IsNew() {
			query := `
				INSERT INTO students (dni, name, birthdate, address_id, course_id)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`
			if err := tx.QueryRow(ctx, query,
				student.DNI, student.Name, student.Birthdate, addressID, courseID).Scan(&student.ID); err != nil {
				return err
			}
		} else {
			var previousAddressID *int64
			err := tx.QueryRow(ctx, `SELECT address_id FROM students WHERE id = $1`, student.ID).Scan(&previousAddressID)
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			if err != nil {
				return err
			}

			query := `
				UPDATE students
				SET dni = $1, name = $2, birthdate = $3, address_id = $4, course_id = $5
				WHERE id = $6
			`
			if _, err := tx.Exec(ctx, query,
				student.DNI, student.Name, student.Birthdate, addressID, courseID, student.ID); err != nil {
				return err
			}

			// Orphan removal: a replaced or cleared address dies with the link.
			if previousAddressID != nil && (addressID == nil || *previousAddressID != *addressID) {
				if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, *previousAddressID); err != nil {
					return err
				}
			}
		}

		return syncPhoneNumbersForStudent(ctx, tx, student)
	})
	if err != nil {
		return 0, storageError("saving student", err)
	}

	return student.ID, nil
}

// saveOwnedAddress inserts or updates the student's owned address.
func saveOwnedAddress(ctx context.Context, tx pgx.Tx, address *models.Address) error {
	if address == nil {
		return nil
	}

	if address.IsNew() {
		query := `
			INSERT INTO addresses (street_address, city, postal_code)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		return tx.QueryRow(ctx, query, address.StreetAddress, address.City, address.PostalCode).Scan(&address.ID)
	}

	query := `
		UPDATE addresses
		SET street_address = $1, city = $2, postal_code = $3
		WHERE id = $4
	`
	cmdTag, err := tx.Exec(ctx, query, address.StreetAddress, address.City, address.PostalCode, address.ID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// syncPhoneNumbersForStudent inserts phone numbers that have no identifier
// yet and rewrites the student's association rows to match the entity.
func syncPhoneNumbersForStudent(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	for _, phone := range student.PhoneNumbers {
		if phone.IsNew() {
			query := `INSERT INTO phone_numbers (phone_number) VALUES ($1) RETURNING id`
			if err := tx.QueryRow(ctx, query, phone.Number).Scan(&phone.ID); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM student_phone_numbers WHERE student_id = $1`, student.ID); err != nil {
		return err
	}

	for _, phone := range student.PhoneNumbers {
		query := `
			INSERT INTO student_phone_numbers (student_id, phone_number_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, query, student.ID, phone.ID); err != nil {
			return err
		}
	}

	return nil
}

// GetAll retrieves all students with their relations loaded.
func (r *StudentRepository) GetAll(ctx context.Context) ([]*models.Student, error) {
	students, err := loadStudents(ctx, r.db.Pool, `SELECT id, dni, name, birthdate, address_id, course_id FROM students`)
	if err != nil {
		return nil, storageError("listing students", err)
	}
	return students, nil
}

// FindByDNI retrieves the student with the given DNI, or nil when none is
// stored. More than one match means the uniqueness invariant was violated
// upstream and is reported as an integrity error.
func (r *StudentRepository) FindByDNI(ctx context.Context, dni string) (*models.Student, error) {
	students, err := loadStudents(ctx, r.db.Pool,
		`SELECT id, dni, name, birthdate, address_id, course_id FROM students WHERE dni = $1`, dni)
	if err != nil {
		return nil, storageError("finding student by dni", err)
	}

	switch len(students) {
	case 0:
		return nil, nil
	case 1:
		return students[0], nil
	default:
		return nil, apperrors.NewIntegrityError(fmt.Sprintf("found %d students with dni %s", len(students), dni))
	}
}

// Delete removes the student with the given identifier together with its
// owned address and association rows. Phone numbers and the course stay.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return deleteStudentRow(ctx, tx, id)
	})
	if err != nil {
		return storageError("deleting student", err)
	}
	return nil
}

// DeleteByDNI resolves the student by DNI and removes it. A missing student
// is a failure; the lenient policy lives in the service layer.
func (r *StudentRepository) DeleteByDNI(ctx context.Context, dni string) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id FROM students WHERE dni = $1`, dni)
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return err
		}

		switch len(ids) {
		case 0:
			return apperrors.ErrNotFound
		case 1:
			return deleteStudentRow(ctx, tx, ids[0])
		default:
			return apperrors.NewIntegrityError(fmt.Sprintf("found %d students with dni %s", len(ids), dni))
		}
	})
	if err != nil {
		return storageError("deleting student by dni", err)
	}
	return nil
}

// deleteStudentRow removes the student row and its owned address. The join
// table rows follow through the foreign key cascade.
func deleteStudentRow(ctx context.Context, tx pgx.Tx, id int64) error {
	var addressID *int64
	err := tx.QueryRow(ctx, `SELECT address_id FROM students WHERE id = $1`, id).Scan(&addressID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return err
	}

	if addressID != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, *addressID); err != nil {
			return err
		}
	}

	return nil
}

// loadStudents runs a student query and eagerly loads relations.
func loadStudents(ctx context.Context, q querier, query string, args ...any) ([]*models.Student, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	var addressIDs, courseIDs []*int64

	for rows.Next() {
		var student models.Student
		var addressID, courseID *int64
		if err := rows.Scan(
			&student.ID,
			&student.DNI,
			&student.Name,
			&student.Birthdate,
			&addressID,
			&courseID,
		); err != nil {
			return nil, err
		}
		students = append(students, &student)
		addressIDs = append(addressIDs, addressID)
		courseIDs = append(courseIDs, courseID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, student := range students {
		if err := loadStudentRelations(ctx, q, student, addressIDs[i], courseIDs[i]); err != nil {
			return nil, err
		}
	}

	return students, nil
}

// loadStudentRelations populates the address, course and phone numbers of a
// loaded student.
func loadStudentRelations(ctx context.Context, q querier, student *models.Student, addressID, courseID *int64) error {
	if addressID != nil {
		var address models.Address
		err := q.QueryRow(ctx,
			`SELECT id, street_address, city, postal_code FROM addresses WHERE id = $1`, *addressID).Scan(
			&address.ID,
			&address.StreetAddress,
			&address.City,
			&address.PostalCode,
		)
		if err != nil {
			return err
		}
		student.Address = &address
	}

	if courseID != nil {
		var course models.Course
		err := q.QueryRow(ctx,
			`SELECT id, name, school, starting_year FROM courses WHERE id = $1`, *courseID).Scan(
			&course.ID,
			&course.Name,
			&course.School,
			&course.StartingYear,
		)
		if err != nil {
			return err
		}
		student.Course = &course
	}

	phones, err := loadPhoneNumbersOfStudent(ctx, q, student.ID)
	if err != nil {
		return err
	}
	student.PhoneNumbers = phones

	return nil
}

// loadPhoneNumbersOfStudent loads the phone numbers associated with a
// student, each with its full set of associated students in shallow form.
func loadPhoneNumbersOfStudent(ctx context.Context, q querier, studentID int64) ([]*models.PhoneNumber, error) {
	query := `
		SELECT p.id, p.phone_number
		FROM phone_numbers p
		JOIN student_phone_numbers sp ON sp.phone_number_id = p.id
		WHERE sp.student_id = $1
		ORDER BY p.id
	`
	rows, err := q.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []*models.PhoneNumber
	for rows.Next() {
		var phone models.PhoneNumber
		if err := rows.Scan(&phone.ID, &phone.Number); err != nil {
			return nil, err
		}
		phones = append(phones, &phone)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, phone := range phones {
		students, err := loadStudentsOfPhoneNumber(ctx, q, phone.ID)
		if err != nil {
			return nil, err
		}
		phone.Students = students
	}

	return phones, nil
}

// loadStudentsOfPhoneNumber loads the reverse side of the association as
// shallow student records, without their own relations.
func loadStudentsOfPhoneNumber(ctx context.Context, q querier, phoneNumberID int64) ([]*models.Student, error) {
	query := `
		SELECT s.id, s.dni, s.name, s.birthdate
		FROM students s
		JOIN student_phone_numbers sp ON sp.student_id = s.id
		WHERE sp.phone_number_id = $1
		ORDER BY s.id
	`
	rows, err := q.Query(ctx, query, phoneNumberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var student models.Student
		if err := rows.Scan(&student.ID, &student.DNI, &student.Name, &student.Birthdate); err != nil {
			return nil, err
		}
		students = append(students, &student)
	}

	return students, rows.Err()
}

// storageError classifies backend failures, keeping already classified
// errors untouched.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrStorage) {
		return err
	}
	if dberrors.IsUniqueViolation(err) {
		return apperrors.NewStorageError(fmt.Sprintf("%s: natural key already in use: %v", op, err))
	}
	return apperrors.StorageFailure(op, err)
}
