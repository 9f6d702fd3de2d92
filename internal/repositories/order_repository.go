package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lyne-commerce/lyne-platform/internal/cache"
	"github.com/lyne-commerce/lyne-platform/internal/models"
	"github.com/lyne-commerce/lyne-platform/internal/utils"
)

func NewOrderRepository(db *sql.DB, c cache.Cache) *CachedRepository[models.Order, int64] {
	return NewCachedRepository(
		&orderStore{db: db},
		&orderValidator{db: db},
		c,
		cache.OrderKeyPrefix,
		cache.EntryTTL,
		func(o *models.Order) int64 { return o.ID },
	)
}

type orderStore struct {
	db *sql.DB
}

func (s *orderStore) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{}

	query := `SELECT id, user_id, shipping_address_id, date, payment_method, tracking_number, status, created_at, updated_at
			  FROM orders
			  WHERE id = $1`

	err := s.db.QueryRowContext(dbCtx, query, id).Scan(&order.ID, &order.UserID, &order.ShippingAddressID, &order.Date, &order.PaymentMethod, &order.TrackingNumber, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

func (s *orderStore) FindAll(ctx context.Context) ([]*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, user_id, shipping_address_id, date, payment_method, tracking_number, status, created_at, updated_at
			  FROM orders
			  ORDER BY id`

	rows, err := s.db.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}

	defer rows.Close()

	var orders []*models.Order

	for rows.Next() {
		order := &models.Order{}

		if err := rows.Scan(&order.ID, &order.UserID, &order.ShippingAddressID, &order.Date, &order.PaymentMethod, &order.TrackingNumber, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *orderStore) Insert(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if order.Date.IsZero() {
		order.Date = time.Now().UTC()
	}

	query := `INSERT INTO orders (user_id, shipping_address_id, date, payment_method, tracking_number, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, created_at, updated_at`

	return s.db.QueryRowContext(dbCtx, query, order.UserID, order.ShippingAddressID, order.Date, order.PaymentMethod, order.TrackingNumber, order.Status).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (s *orderStore) UpdateRow(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE orders SET user_id = $1, shipping_address_id = $2, date = $3, payment_method = $4, tracking_number = $5, status = $6, updated_at = NOW()
			  WHERE id = $7
			  RETURNING updated_at`

	return s.db.QueryRowContext(dbCtx, query, order.UserID, order.ShippingAddressID, order.Date, order.PaymentMethod, order.TrackingNumber, order.Status, order.ID).Scan(&order.UpdatedAt)
}

func (s *orderStore) DeleteRow(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(dbCtx, `DELETE FROM orders WHERE id = $1`, id)

	return err
}

func (s *orderStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking order existence: %w", err)
	}

	return exists, nil
}

type orderValidator struct {
	db *sql.DB
}

// An order must name a real user and a real shipping address, carry a payment
// method and tracking number, and have left the unknown status.
func (v *orderValidator) ValidateForCreate(ctx context.Context, order *models.Order) (bool, error) {

	if err := validate.StructCtx(ctx, order); err != nil {
		return false, nil
	}

	if ok, err := v.userExists(ctx, order.UserID); err != nil || !ok {
		return ok, err
	}

	return v.addressExists(ctx, order.ShippingAddressID)
}

func (v *orderValidator) ValidateForUpdate(ctx context.Context, order *models.Order) (bool, error) {

	if err := validate.StructCtx(ctx, order); err != nil {
		return false, nil
	}

	if ok, err := v.userExists(ctx, order.UserID); err != nil || !ok {
		return ok, err
	}

	if ok, err := v.addressExists(ctx, order.ShippingAddressID); err != nil || !ok {
		return ok, err
	}

	return v.orderExists(ctx, order.ID)
}

func (v *orderValidator) userExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}

	return exists, nil
}

func (v *orderValidator) addressExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM addresses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking address existence: %w", err)
	}

	return exists, nil
}

func (v *orderValidator) orderExists(ctx context.Context, id int64) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := v.db.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking order existence: %w", err)
	}

	return exists, nil
}
