package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Surname      string    `json:"surname" validate:"required"`
	Gender       string    `json:"gender" validate:"required"`
	PasswordHash string    `json:"-"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	PhoneNumber  string    `json:"phone_number" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	Role         string    `json:"role,omitempty"`
	AddressID    *int64    `json:"address_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
