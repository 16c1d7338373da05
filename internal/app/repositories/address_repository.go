package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alvaro/studentreg/internal/app/models"
	"github.com/alvaro/studentreg/internal/db"
	"github.com/alvaro/studentreg/internal/pkg/apperrors"
)

// AddressRepository handles database operations for addresses. Addresses
// are usually saved through their owning student; the standalone operations
// exist for the uniform gateway contract.
type AddressRepository struct {
	db *db.PostgresDB
}

// NewAddressRepository creates a new address repository
func NewAddressRepository(database *db.PostgresDB) *AddressRepository {
	return &AddressRepository{
		db: database,
	}
}

// SaveOrUpdate inserts the address when it has no identifier and fully
// replaces the stored record otherwise.
func (r *AddressRepository) SaveOrUpdate(ctx context.Context, address *models.Address) (int64, error) {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return saveOwnedAddress(ctx, tx, address)
	})
	if err != nil {
		return 0, storageError("saving address", err)
	}
	return address.ID, nil
}

// GetAll retrieves all addresses
func (r *AddressRepository) GetAll(ctx context.Context) ([]*models.Address, error) {
	addresses, err := r.queryAddresses(ctx, `SELECT id, street_address, city, postal_code FROM addresses`)
	if err != nil {
		return nil, storageError("listing addresses", err)
	}
	return addresses, nil
}

// FindByStreetAndCity retrieves the address with the given street and city,
// or nil when none is stored. More than one match is an integrity error.
func (r *AddressRepository) FindByStreetAndCity(ctx context.Context, street, city string) (*models.Address, error) {
	addresses, err := r.queryAddresses(ctx,
		`SELECT id, street_address, city, postal_code FROM addresses WHERE street_address = $1 AND city = $2`,
		street, city)
	if err != nil {
		return nil, storageError("finding address", err)
	}

	switch len(addresses) {
	case 0:
		return nil, nil
	case 1:
		return addresses[0], nil
	default:
		return nil, apperrors.NewIntegrityError(
			fmt.Sprintf("found %d addresses for street %q and city %q", len(addresses), street, city))
	}
}

// Delete removes the address with the given identifier. Deleting an unknown
// identifier is a failure.
func (r *AddressRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM addresses WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}

		_, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return storageError("deleting address", err)
	}
	return nil
}

func (r *AddressRepository) queryAddresses(ctx context.Context, query string, args ...any) ([]*models.Address, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		var address models.Address
		if err := rows.Scan(
			&address.ID,
			&address.StreetAddress,
			&address.City,
			&address.PostalCode,
		); err != nil {
			return nil, err
		}
		addresses = append(addresses, &address)
	}

	return addresses, rows.Err()
}
