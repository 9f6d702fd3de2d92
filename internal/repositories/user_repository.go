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

func NewUserRepository(db *sql.DB, c cache.Cache) *CachedRepository[models.User, int64] {
	return NewCachedRepository(
		&userStore{db: db},
		&userValidator{db: db},
		c,
		cache.UserKeyPrefix,
		cache.EntryTTL,
		func(u *models.User) int64 { return u.ID },
	)
}

type userStore struct {
	db *sql.DB
}

func (s *userStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user := &models.User{}

	query := `SELECT id, name, surname, gender, password_hash, date_of_birth, phone_number, email, role, address_id, created_at, updated_at
			  FROM users
			  WHERE id = $1`

	err := s.db.QueryRowContext(dbCtx, query, id).Scan(&user.ID, &user.Name, &user.Surname, &user.Gender, &user.PasswordHash, &user.DateOfBirth, &user.PhoneNumber, &user.Email, &user.Role, &user.AddressID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

func (s *userStore) FindAll(ctx context.Context) ([]*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, surname, gender, password_hash, date_of_birth, phone_number, email, role, address_id, created_at, updated_at
			  FROM users
			  ORDER BY id`

	rows, err := s.db.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}

	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		user := &models.User{}

		if err := rows.Scan(&user.ID, &user.Name, &user.Surname, &user.Gender, &user.PasswordHash, &user.DateOfBirth, &user.PhoneNumber, &user.Email, &user.Role, &user.AddressID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (s *userStore) Insert(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// New accounts default to the non-privileged role.
	query := `INSERT INTO users (name, surname, gender, password_hash, date_of_birth, phone_number, email, role, address_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE(NULLIF($8, ''), 'user'), $9)
			  RETURNING id, role, created_at, updated_at`

	return s.db.QueryRowContext(dbCtx, query, user.Name, user.Surname, user.Gender, user.PasswordHash, user.DateOfBirth, user.PhoneNumber, user.Email, user.Role, user.AddressID).Scan(&user.ID, &user.Role, &user.CreatedAt, &user.UpdatedAt)
}

func (s *userStore) UpdateRow(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE users SET name = $1, surname = $2, gender = $3, password_hash = $4, date_of_birth = $5, phone_number = $6, email = $7, role = $8, address_id = $9, updated_at = NOW()
			  WHERE id = $10
			  RETURNING updated_at`

	return s.db.QueryRowContext(dbCtx, query, user.Name, user.Surname, user.Gender, user.PasswordHash, user.DateOfBirth, user.PhoneNumber, user.Email, user.Role, user.AddressID, user.ID).Scan(&user.UpdatedAt)
}

func (s *userStore) DeleteRow(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(dbCtx, `DELETE FROM users WHERE id = $1`, id)

	return err
}

func (s *userStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}

	return exists, nil
}

type userValidator struct {
	db *sql.DB
}

func (v *userValidator) ValidateForCreate(ctx context.Context, user *models.User) (bool, error) {

	if err := validate.StructCtx(ctx, user); err != nil {
		return false, nil
	}

	if user.AddressID != nil {
		return v.addressExists(ctx, *user.AddressID)
	}

	return true, nil
}

func (v *userValidator) ValidateForUpdate(ctx context.Context, user *models.User) (bool, error) {

	if err := validate.StructCtx(ctx, user); err != nil {
		return false, nil
	}

	if user.AddressID != nil {
		if ok, err := v.addressExists(ctx, *user.AddressID); err != nil || !ok {
			return ok, err
		}
	}

	return v.userExists(ctx, user.ID)
}

func (v *userValidator) addressExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM addresses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking address existence: %w", err)
	}

	return exists, nil
}

func (v *userValidator) userExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}

	return exists, nil
}
