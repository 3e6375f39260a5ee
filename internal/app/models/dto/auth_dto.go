package dto

import "github.com/yigit/internhub/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the self-service sign-up payload. New accounts always
// start with the intern role.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string `json:"lastName" binding:"required,min=1,max=100"`
}

// RefreshTokenRequest carries the refresh token when it is not sent as a cookie
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	Token      TokenResponse `json:"token"`
	User       *models.User  `json:"user"`
	RedirectTo string        `json:"redirectTo" example:"/stagiaire"`
}

// MeResponse describes the caller as resolved by the access gate
type MeResponse struct {
	User     *models.User `json:"user,omitempty"`
	Role     models.Role  `json:"role" example:"tutor"`
	Fallback bool         `json:"fallback"`
	HomePath string       `json:"homePath" example:"/tuteur"`
}
