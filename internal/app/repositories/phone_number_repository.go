package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/db"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
)

// PhoneNumberRepository handles database operations for phone numbers.
// Saving a phone number rewrites its student associations to match the
// entity; the students themselves are only referenced, never saved.
type PhoneNumberRepository struct {
	db *db.PostgresDB
}

// NewPhoneNumberRepository creates a new phone number repository
func NewPhoneNumberRepository(database *db.PostgresDB) *PhoneNumberRepository {
	return &PhoneNumberRepository{
		db: database,
	}
}

// SaveOrUpdate inserts the phone number when it has no identifier and fully
// replaces the stored record otherwise, syncing the association rows with
// the entity's student set.
func (r *PhoneNumberRepository) SaveOrUpdate(ctx context.Context, phone *models.PhoneNumber) (int64, error) {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if phone.IsNew() {
			query := `INSERT INTO phone_numbers (phone_number) VALUES ($1) RETURNING id`
			if err := tx.QueryRow(ctx, query, phone.Number).Scan(&phone.ID); err != nil {
				return err
			}
		} else {
			query := `UPDATE phone_numbers SET phone_number = $1 WHERE id = $2`
			cmdTag, err := tx.Exec(ctx, query, phone.Number, phone.ID)
			if err != nil {
				return err
			}
			if cmdTag.RowsAffected() == 0 {
				return apperrors.ErrNotFound
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM student_phone_numbers WHERE phone_number_id = $1`, phone.ID); err != nil {
			return err
		}

		for _, student := range phone.Students {
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
	})
	if err != nil {
		return 0, storageError("saving phone number", err)
	}
	return phone.ID, nil
}

// GetAll retrieves all phone numbers with their associated students in
// shallow form.
func (r *PhoneNumberRepository) GetAll(ctx context.Context) ([]*models.PhoneNumber, error) {
	phones, err := r.queryPhoneNumbers(ctx, `SELECT id, phone_number FROM phone_numbers`)
	if err != nil {
		return nil, storageError("listing phone numbers", err)
	}
	return phones, nil
}

// FindByNumber retrieves the phone number with the given number, or nil
// when none is stored. More than one match is an integrity error.
func (r *PhoneNumberRepository) FindByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	phones, err := r.queryPhoneNumbers(ctx,
		`SELECT id, phone_number FROM phone_numbers WHERE phone_number = $1`, number)
	if err != nil {
		return nil, storageError("finding phone number", err)
	}

	switch len(phones) {
	case 0:
		return nil, nil
	case 1:
		return phones[0], nil
	default:
		return nil, apperrors.NewIntegrityError(fmt.Sprintf("found %d phone numbers with number %s", len(phones), number))
	}
}

// Delete removes the phone number with the given identifier together with
// its association rows. Deleting an unknown identifier is a failure.
func (r *PhoneNumberRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM phone_numbers WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}

		_, err := tx.Exec(ctx, `DELETE FROM phone_numbers WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return storageError("deleting phone number", err)
	}
	return nil
}

func (r *PhoneNumberRepository) queryPhoneNumbers(ctx context.Context, query string, args ...any) ([]*models.PhoneNumber, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
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
		students, err := loadStudentsOfPhoneNumber(ctx, r.db.Pool, phone.ID)
		if err != nil {
			return nil, err
		}
		phone.Students = students
	}

	return phones, nil
}
