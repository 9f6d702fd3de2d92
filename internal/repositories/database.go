package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lyne-commerce/lyne-platform/internal/cache"
	"github.com/lyne-commerce/lyne-platform/internal/config"
	"github.com/lyne-commerce/lyne-platform/internal/models"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

// Shared field-completeness checker; the existence half of each predicate
// runs its own SQL.
var validate = validator.New(validator.WithRequiredStructEnabled())

type Repository struct {
	DB *sql.DB

	Address  *CachedRepository[models.Address, int64]
	Category *CachedRepository[models.Category, uuid.UUID]
	Order    *CachedRepository[models.Order, int64]
	Product  *CachedRepository[models.Product, uuid.UUID]
	User     *CachedRepository[models.User, int64]
}

func New(cfg *config.Config, c cache.Cache) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{
		DB:       db,
		Address:  NewAddressRepository(db, c),
		Category: NewCategoryRepository(db, c),
		Order:    NewOrderRepository(db, c),
		Product:  NewProductRepository(db, c),
		User:     NewUserRepository(db, c),
	}, nil
}

func (r *Repository) Close() error {
	return r.DB.Close()
}
