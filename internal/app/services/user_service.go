package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// UserService defines the interface for user operations
type UserService interface {
	List(ctx context.Context, filter dto.UserFilter) (*dto.ListResponse[*models.User], error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	SetActive(ctx context.Context, p *appauth.Principal, id int64, active bool) (*models.User, error)
	SetRole(ctx context.Context, p *appauth.Principal, id int64, role models.Role) (*models.User, error)
	Delete(ctx context.Context, p *appauth.Principal, id int64) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users  UserStore
	tokens TokenStore
	logger zerolog.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, tokens TokenStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{users: users, tokens: tokens, logger: logger}
}

func (s *userServiceImpl) List(ctx context.Context, filter dto.UserFilter) (*dto.ListResponse[*models.User], error) {
	params := repositories.UserListParams{
		Active: filter.Active,
		Search: strings.TrimSpace(filter.Search),
	}
	if filter.Role != "" {
		role := models.Role(filter.Role)
		params.Role = &role
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.users.List(ctx, params, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse[*models.User]{
		Items:      users,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create provisions an account. Without a password the account can only sign
// in through the external provider, matched on AuthID.
func (s *userServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		AuthID:    strings.TrimSpace(req.AuthID),
		Email:     normalizeEmail(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
		IsActive:  true,
	}
	if !user.Role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role")
	}
	if user.AuthID == "" {
		user.AuthID = uuid.New().String()
	}

	if req.Password != "" {
		if err := validatePassword(req.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = &hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userId", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

func (s *userServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// SetActive toggles is_active and nothing else: interns, requests and
// documents of a disabled user stay in place. Disabling also revokes the
// user's refresh tokens.
func (s *userServiceImpl) SetActive(ctx context.Context, p *appauth.Principal, id int64, active bool) (*models.User, error) {
	if !active && p.UserID == id {
		return nil, apperrors.NewValidationError("You cannot disable your own account")
	}

	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		if err := s.tokens.RevokeAllUserTokens(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("userId", id).Msg("Failed to revoke tokens of disabled user")
		}
	}

	s.logger.Info().Int64("userId", id).Bool("active", active).Int64("by", p.UserID).Msg("User status changed")
	return s.users.GetByID(ctx, id)
}

func (s *userServiceImpl) SetRole(ctx context.Context, p *appauth.Principal, id int64, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role")
	}
	if p.UserID == id {
		return nil, apperrors.NewValidationError("You cannot change your own role")
	}

	if err := s.users.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userId", id).Str("role", string(role)).Int64("by", p.UserID).Msg("User role changed")
	return s.users.GetByID(ctx, id)
}

func (s *userServiceImpl) Delete(ctx context.Context, p *appauth.Principal, id int64) error {
	if p.UserID == id {
		return apperrors.NewValidationError("You cannot delete your own account")
	}
	return s.users.Delete(ctx, id)
}
