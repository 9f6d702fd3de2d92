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

func NewProductRepository(db *sql.DB, c cache.Cache) *CachedRepository[models.Product, uuid.UUID] {
	return NewCachedRepository(
		&productStore{db: db},
		&productValidator{db: db},
		c,
		cache.ProductKeyPrefix,
		cache.EntryTTL,
		func(p *models.Product) uuid.UUID { return p.ID },
	)
}

type productStore struct {
	db *sql.DB
}

func (s *productStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `SELECT id, category_id, name, brand, description, price, stock_quantity, image_url, size, color, is_active, created_at, updated_at
			  FROM products
			  WHERE id = $1`

	err := s.db.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.CategoryID, &product.Name, &product.Brand, &product.Description, &product.Price, &product.StockQuantity, &product.ImageURL, &product.Size, &product.Color, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return product, nil
}

func (s *productStore) FindAll(ctx context.Context) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, category_id, name, brand, description, price, stock_quantity, image_url, size, color, is_active, created_at, updated_at
			  FROM products
			  ORDER BY name`

	rows, err := s.db.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		if err := rows.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Brand, &product.Description, &product.Price, &product.StockQuantity, &product.ImageURL, &product.Size, &product.Color, &product.IsActive, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *productStore) Insert(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	query := `INSERT INTO products (id, category_id, name, brand, description, price, stock_quantity, image_url, size, color, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING created_at, updated_at`

	return s.db.QueryRowContext(dbCtx, query, product.ID, product.CategoryID, product.Name, product.Brand, product.Description, product.Price, product.StockQuantity, product.ImageURL, product.Size, product.Color, product.IsActive).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (s *productStore) UpdateRow(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE products SET category_id = $1, name = $2, brand = $3, description = $4, price = $5, stock_quantity = $6, image_url = $7, size = $8, color = $9, is_active = $10, updated_at = NOW()
			  WHERE id = $11
			  RETURNING updated_at`

	return s.db.QueryRowContext(dbCtx, query, product.CategoryID, product.Name, product.Brand, product.Description, product.Price, product.StockQuantity, product.ImageURL, product.Size, product.Color, product.IsActive, product.ID).Scan(&product.UpdatedAt)
}

func (s *productStore) DeleteRow(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)

	return err
}

func (s *productStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product existence: %w", err)
	}

	return exists, nil
}

type productValidator struct {
	db *sql.DB
}

func (v *productValidator) ValidateForCreate(ctx context.Context, product *models.Product) (bool, error) {

	if err := validate.StructCtx(ctx, product); err != nil {
		return false, nil
	}

	// New products must go live immediately; inactive rows are an update
	// concern, not a creation state.
	if !product.IsActive {
		return false, nil
	}

	return v.categoryExists(ctx, product.CategoryID)
}

func (v *productValidator) ValidateForUpdate(ctx context.Context, product *models.Product) (bool, error) {

	if err := validate.StructCtx(ctx, product); err != nil {
		return false, nil
	}

	if ok, err := v.categoryExists(ctx, product.CategoryID); err != nil || !ok {
		return ok, err
	}

	return v.productExists(ctx, product.ID)
}

func (v *productValidator) categoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category existence: %w", err)
	}

	return exists, nil
}

func (v *productValidator) productExists(ctx context.Context, id uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product existence: %w", err)
	}

	return exists, nil
}
