package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// SettingService defines the interface for application settings
type SettingService interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Update(ctx context.Context, key, value string) (*models.Setting, error)
}

type settingServiceImpl struct {
	settings SettingStore
	logger   zerolog.Logger
}

// NewSettingService creates a new setting service
func NewSettingService(settings SettingStore, logger zerolog.Logger) SettingService {
	return &settingServiceImpl{settings: settings, logger: logger}
}

func (s *settingServiceImpl) List(ctx context.Context) ([]*models.Setting, error) {
	return s.settings.List(ctx)
}

func (s *settingServiceImpl) Get(ctx context.Context, key string) (*models.Setting, error) {
	if !settingKeyPattern.MatchString(key) {
		return nil, apperrors.ErrSettingNotFound
	}
	return s.settings.Get(ctx, key)
}

// Update creates the key when it does not exist yet
func (s *settingServiceImpl) Update(ctx context.Context, key, value string) (*models.Setting, error) {
	if !settingKeyPattern.MatchString(key) {
		return nil, apperrors.NewValidationError("Setting keys are lowercase letters, digits and underscores")
	}
	setting, err := s.settings.Upsert(ctx, key, strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("key", key).Msg("Setting updated")
	return setting, nil
}
