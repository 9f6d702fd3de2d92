package models

type Address struct {
	ID      int64  `json:"id"`
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
	UserID  *int64 `json:"user_id,omitempty"`
}
