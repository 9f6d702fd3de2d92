package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID `json:"id"`
	CategoryID    uuid.UUID `json:"category_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Brand         string    `json:"brand" validate:"required"`
	Description   string    `json:"description" validate:"required"`
	Price         float64   `json:"price" validate:"required,gt=0"`
	StockQuantity int64     `json:"stock_quantity" validate:"gte=0"`
	ImageURL      string    `json:"image_url" validate:"required"`
	Size          string    `json:"size,omitempty"`
	Color         string    `json:"color" validate:"required"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
