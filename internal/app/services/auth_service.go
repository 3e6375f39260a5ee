package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/email"
)

// TokenIssuer issues the built-in provider's tokens
type TokenIssuer interface {
	GenerateTokenPair(user *models.User) (*auth.TokenPair, error)
}

// OIDCProvider runs the authorization code flow of an external provider
type OIDCProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, *auth.Identity, error)
}

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(p *appauth.Principal) *dto.MeResponse
	OIDCEnabled() bool
	OIDCLoginURL(state string) (string, error)
	OIDCCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type authServiceImpl struct {
	users             UserStore
	tokens            TokenStore
	issuer            TokenIssuer
	oidc              OIDCProvider
	mailer            email.EmailService
	allowRegistration bool
	logger            zerolog.Logger
}

// AuthOptions carries settings and optional collaborators of AuthService
type AuthOptions struct {
	AllowRegistration bool
	OIDC              OIDCProvider
	Mailer            email.EmailService
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, tokens TokenStore, issuer TokenIssuer, opts AuthOptions, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		users:             users,
		tokens:            tokens,
		issuer:            issuer,
		oidc:              opts.OIDC,
		mailer:            opts.Mailer,
		allowRegistration: opts.AllowRegistration,
		logger:            logger,
	}
}

// validatePassword checks if password meets requirements
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewValidationError("Password must be at least 8 characters long")
	}

	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.NewValidationError("Password must contain at least one letter and one digit")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an intern account for the built-in provider. Other roles
// are granted by an administrator afterwards.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if !s.allowRegistration {
		return nil, apperrors.ErrRegistrationClosed
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	emailAddr := normalizeEmail(req.Email)
	exists, err := s.users.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		AuthID:    uuid.New().String(),
		Email:     emailAddr,
		Password:  &hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      models.RoleIntern,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userId", user.ID).Str("email", user.Email).Msg("User registered")
	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
			s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to send welcome email")
		}
	}

	return s.issue(ctx, user)
}

// Login checks credentials of the built-in provider
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Password == nil || !auth.CheckPassword(*user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to update last login")
	}
	return s.issue(ctx, user)
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair is issued
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrTokenNotFound
	}

	stored, err := s.tokens.GetValidToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout revokes the refresh token. An unknown token is not an error.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

func (s *authServiceImpl) Me(p *appauth.Principal) *dto.MeResponse {
	return &dto.MeResponse{
		User:     p.User,
		Role:     p.Role,
		Fallback: p.Fallback,
		HomePath: appauth.HomePath(p.Role),
	}
}

func (s *authServiceImpl) OIDCEnabled() bool {
	return s.oidc != nil
}

func (s *authServiceImpl) OIDCLoginURL(state string) (string, error) {
	if s.oidc == nil {
		return "", apperrors.NewBadRequestError("Single sign-on is not configured")
	}
	return s.oidc.AuthCodeURL(state), nil
}

// OIDCCallback exchanges the code for an ID token, which becomes the session
// token. The profile is resolved per request by the access gate, so a
// missing profile is not an error here.
func (s *authServiceImpl) OIDCCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.oidc == nil {
		return nil, apperrors.NewBadRequestError("Single sign-on is not configured")
	}

	rawIDToken, identity, err := s.oidc.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	resp := &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: rawIDToken,
			TokenType:   "Bearer",
		},
	}

	user, err := s.users.GetByAuthID(ctx, identity.Subject)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.logger.Warn().Str("subject", identity.Subject).Str("email", identity.Email).Msg("SSO login without a profile")
		resp.RedirectTo = appauth.HomePath(models.RoleIntern)
		return resp, nil
	case err != nil:
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to update last login")
	}
	resp.User = user
	resp.RedirectTo = appauth.HomePath(user.Role)
	return resp, nil
}

func (s *authServiceImpl) issue(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.issuer.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User:       user,
		RedirectTo: appauth.HomePath(user.Role),
	}, nil
}
