package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lyne-commerce/lyne-platform/internal/cache"
	"github.com/lyne-commerce/lyne-platform/internal/models"
	"github.com/lyne-commerce/lyne-platform/internal/utils"
)

func NewAddressRepository(db *sql.DB, c cache.Cache) *CachedRepository[models.Address, int64] {
	return NewCachedRepository(
		&addressStore{db: db},
		&addressValidator{db: db},
		c,
		cache.AddressKeyPrefix,
		cache.EntryTTL,
		func(a *models.Address) int64 { return a.ID },
	)
}

type addressStore struct {
	db *sql.DB
}

func (s *addressStore) FindByID(ctx context.Context, id int64) (*models.Address, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	address := &models.Address{}

	query := `SELECT id, street, city, state, zip, country, user_id
			  FROM addresses
			  WHERE id = $1`

	err := s.db.QueryRowContext(dbCtx, query, id).Scan(&address.ID, &address.Street, &address.City, &address.State, &address.Zip, &address.Country, &address.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying address by id: %w", err)
	}

	return address, nil
}

func (s *addressStore) FindAll(ctx context.Context) ([]*models.Address, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, street, city, state, zip, country, user_id
			  FROM addresses
			  ORDER BY id`

	rows, err := s.db.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying addresses: %w", err)
	}

	defer rows.Close()

	var addresses []*models.Address

	for rows.Next() {
		address := &models.Address{}

		if err := rows.Scan(&address.ID, &address.Street, &address.City, &address.State, &address.Zip, &address.Country, &address.UserID); err != nil {
			return nil, fmt.Errorf("scanning address row: %w", err)
		}

		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

func (s *addressStore) Insert(ctx context.Context, address *models.Address) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO addresses (street, city, state, zip, country, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`

	return s.db.QueryRowContext(dbCtx, query, address.Street, address.City, address.State, address.Zip, address.Country, address.UserID).Scan(&address.ID)
}

func (s *addressStore) UpdateRow(ctx context.Context, address *models.Address) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE addresses SET street = $1, city = $2, state = $3, zip = $4, country = $5, user_id = $6
			  WHERE id = $7`

	_, err := s.db.ExecContext(dbCtx, query, address.Street, address.City, address.State, address.Zip, address.Country, address.UserID, address.ID)

	return err
}

func (s *addressStore) DeleteRow(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(dbCtx, `DELETE FROM addresses WHERE id = $1`, id)

	return err
}

func (s *addressStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM addresses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking address existence: %w", err)
	}

	return exists, nil
}

type addressValidator struct {
	db *sql.DB
}

func (v *addressValidator) ValidateForCreate(ctx context.Context, address *models.Address) (bool, error) {

	if err := validate.StructCtx(ctx, address); err != nil {
		return false, nil
	}

	if address.UserID != nil {
		return v.userExists(ctx, *address.UserID)
	}

	return true, nil
}

func (v *addressValidator) ValidateForUpdate(ctx context.Context, address *models.Address) (bool, error) {

	if err := validate.StructCtx(ctx, address); err != nil {
		return false, nil
	}

	if address.UserID != nil {
		if ok, err := v.userExists(ctx, *address.UserID); err != nil || !ok {
			return ok, err
		}
	}

	return v.addressExists(ctx, address.ID)
}

func (v *addressValidator) userExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}

	return exists, nil
}

func (v *addressValidator) addressExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM addresses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking address existence: %w", err)
	}

	return exists, nil
}
