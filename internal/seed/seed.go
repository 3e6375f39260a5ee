package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/auth"
)

// UserSeeder is the part of the user repository used to create the first admin
type UserSeeder interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *appModels.User) error
}

// SettingSeeder writes a setting only when the key is not set yet
type SettingSeeder interface {
	SetDefault(ctx context.Context, key, value string) error
}

// TemplateSeeder inserts a template unless one with the same name exists
type TemplateSeeder interface {
	CreateIfMissing(ctx context.Context, t *appModels.DocumentTemplate) (bool, error)
}

// Stores groups the repositories written by CreateDefaultData
type Stores struct {
	Users     UserSeeder
	Settings  SettingSeeder
	Templates TemplateSeeder
}

// Options controls the seeded admin account
type Options struct {
	AdminEmail    string
	AdminPassword string
}

var defaultSettings = []struct{ key, value string }{
	{appModels.SettingCompanyName, "InternHub"},
	{appModels.SettingCompanyAddress, ""},
	{appModels.SettingSignatory, "Human Resources"},
}

// CreateDefaultData creates the first admin, the default settings and the
// default document templates if they don't exist. Every step runs even when
// an earlier one fails; the failures are joined.
func CreateDefaultData(ctx context.Context, stores Stores, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (admin, settings, templates)...")
	var finalErr error

	// --- Default admin --- //
	if email := strings.TrimSpace(opts.AdminEmail); email != "" {
		exists, err := stores.Users.EmailExists(ctx, email)
		if err != nil {
			lgr.Error().Err(err).Msg("Error checking if admin user exists")
			finalErr = errors.Join(finalErr, err)
		} else if !exists {
			if err := createAdmin(ctx, stores.Users, email, opts.AdminPassword); err != nil {
				lgr.Error().Err(err).Msg("Error creating default admin user")
				finalErr = errors.Join(finalErr, err)
			} else {
				lgr.Info().Str("email", email).Msg("Default admin user created")
			}
		}
	}

	// --- Settings --- //
	for _, s := range defaultSettings {
		if err := stores.Settings.SetDefault(ctx, s.key, s.value); err != nil {
			lgr.Error().Err(err).Str("key", s.key).Msg("Error seeding setting")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Templates --- //
	for _, t := range DefaultTemplates() {
		created, err := stores.Templates.CreateIfMissing(ctx, t)
		if err != nil {
			lgr.Error().Err(err).Str("template", t.Name).Msg("Error seeding template")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			lgr.Info().Str("template", t.Name).Msg("Default template created")
		}
	}

	return finalErr
}

func createAdmin(ctx context.Context, users UserSeeder, email, password string) error {
	admin := &appModels.User{
		AuthID:    uuid.New().String(),
		Email:     email,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      appModels.RoleAdmin,
		IsActive:  true,
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		admin.Password = &hash
	}
	return users.Create(ctx, admin)
}
