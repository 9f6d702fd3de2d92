package models

import "time"

type OrderStatus string

const (
	// The zero value is deliberately not a valid status; validation rejects it.
	OrderStatusUnknown   OrderStatus = ""
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

type Order struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"user_id" validate:"required"`
	ShippingAddressID int64       `json:"shipping_address_id" validate:"required"`
	Date              time.Time   `json:"date"`
	PaymentMethod     string      `json:"payment_method" validate:"required"`
	TrackingNumber    int64       `json:"tracking_number" validate:"required"`
	Status            OrderStatus `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled returned"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
