package dto

import "github.com/yigit/internhub/internal/app/models"

// CreateUserRequest is used by admins to provision an account
type CreateUserRequest struct {
	Email     string      `json:"email" binding:"required,email,max=255"`
	Password  string      `json:"password" binding:"omitempty,min=8,max=72"`
	FirstName string      `json:"firstName" binding:"required,max=100"`
	LastName  string      `json:"lastName" binding:"required,max=100"`
	Role      models.Role `json:"role" binding:"required,oneof=admin hr tutor intern"`
	AuthID    string      `json:"authId" binding:"omitempty,max=255"`
}

// UpdateUserRequest changes profile fields only
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
}

// UpdateUserStatusRequest toggles the active flag
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UpdateUserRoleRequest assigns a new role
type UpdateUserRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=admin hr tutor intern"`
}

// UserFilter holds list filters bound from the query string
type UserFilter struct {
	Role   string `form:"role" binding:"omitempty,oneof=admin hr tutor intern"`
	Active *bool  `form:"active"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Size   int    `form:"size"`
}
