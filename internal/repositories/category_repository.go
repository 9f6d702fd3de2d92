package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lyne-commerce/lyne-platform/internal/cache"
	"github.com/lyne-commerce/lyne-platform/internal/models"
	"github.com/lyne-commerce/lyne-platform/internal/utils"
)

// Categories change rarely, so they live in the cache for an hour instead of
// the 15 minutes the other entities get.
func NewCategoryRepository(db *sql.DB, c cache.Cache) *CachedRepository[models.Category, uuid.UUID] {
	return NewCachedRepository(
		&categoryStore{db: db},
		&categoryValidator{db: db},
		c,
		cache.CategoryKeyPrefix,
		cache.CategoryEntryTTL,
		func(cat *models.Category) uuid.UUID { return cat.ID },
	)
}

type categoryStore struct {
	db *sql.DB
}

func (s *categoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	category := &models.Category{}

	query := `SELECT id, name, description FROM categories WHERE id = $1`

	err := s.db.QueryRowContext(dbCtx, query, id).Scan(&category.ID, &category.Name, &category.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying category by id: %w", err)
	}

	return category, nil
}

func (s *categoryStore) FindAll(ctx context.Context) ([]*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(dbCtx, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}

	defer rows.Close()

	var categories []*models.Category

	for rows.Next() {
		category := &models.Category{}

		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (s *categoryStore) Insert(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	query := `INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(dbCtx, query, category.ID, category.Name, category.Description)

	return err
}

func (s *categoryStore) UpdateRow(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE categories SET name = $1, description = $2 WHERE id = $3`

	_, err := s.db.ExecContext(dbCtx, query, category.Name, category.Description, category.ID)

	return err
}

func (s *categoryStore) DeleteRow(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(dbCtx, `DELETE FROM categories WHERE id = $1`, id)

	return err
}

func (s *categoryStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category existence: %w", err)
	}

	return exists, nil
}

type categoryValidator struct {
	db *sql.DB
}

func (v *categoryValidator) ValidateForCreate(ctx context.Context, category *models.Category) (bool, error) {

	if err := validate.StructCtx(ctx, category); err != nil {
		return false, nil
	}

	return true, nil
}

func (v *categoryValidator) ValidateForUpdate(ctx context.Context, category *models.Category) (bool, error) {

	if err := validate.StructCtx(ctx, category); err != nil {
		return false, nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, category.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category existence: %w", err)
	}

	return exists, nil
}
