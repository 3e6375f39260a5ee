package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	AuthID      string     `json:"authId" db:"auth_id" example:"5f0c3a9e-8b1d-4c52-9e4a-2d7b6f1c0e11"` // Identity provider subject
	Email       string     `json:"email" db:"email" example:"jane.doe@company.com"`
	Password    *string    `json:"-" db:"password_hash"` // Only set for the built-in provider
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	Role        Role       `json:"role" db:"role" example:"intern"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshToken is a persisted refresh token of the built-in provider
type RefreshToken struct {
	ID         int64     `db:"id"`
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}
