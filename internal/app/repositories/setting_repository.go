package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/db"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

// SettingRepository handles the key/value settings table
type SettingRepository struct {
	db db.DBTX
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(conn db.DBTX) *SettingRepository {
	return &SettingRepository{db: conn}
}

// List returns all settings ordered by key
func (r *SettingRepository) List(ctx context.Context) ([]*models.Setting, error) {
	sql, args, err := psql.Select("key", "value", "updated_at").From("settings").OrderBy("key").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list settings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing settings")
		return nil, fmt.Errorf("error listing settings: %w", err)
	}
	defer rows.Close()

	out := []*models.Setting{}
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning setting: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Get returns one setting
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	sql, args, err := psql.Select("key", "value", "updated_at").From("settings").
		Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get setting query: %w", err)
	}

	var s models.Setting
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSettingNotFound
		}
		logger.Error().Err(err).Str("key", key).Msg("Error retrieving setting")
		return nil, fmt.Errorf("error retrieving setting: %w", err)
	}
	return &s, nil
}

// Upsert sets the value of a key, creating it when needed
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	now := time.Now()
	sql, args, err := psql.Insert("settings").
		Columns("key", "value", "updated_at").
		Values(key, value, now).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert setting query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Error upserting setting")
		return nil, fmt.Errorf("error saving setting: %w", err)
	}
	return &models.Setting{Key: key, Value: value, UpdatedAt: now}, nil
}

// SetDefault inserts a setting only when the key is absent
func (r *SettingRepository) SetDefault(ctx context.Context, key, value string) error {
	sql, args, err := psql.Insert("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build default setting query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error seeding setting %s: %w", key, err)
	}
	return nil
}
