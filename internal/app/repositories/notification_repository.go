package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/db"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/logger"
)

var notificationColumns = []string{"id", "user_id", "title", "message", "COALESCE(link, '')", "is_read", "created_at"}

// NotificationRepository handles database operations on notifications.
// Every read and write is keyed by recipient so callers cannot touch
// another user's notifications.
type NotificationRepository struct {
	db db.DBTX
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(conn db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: conn}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := psql.Insert("notifications").
		Columns("user_id", "title", "message", "link", "is_read").
		Values(n.UserID, n.Title, n.Message, n.Link, false).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("userID", n.UserID).Msg("Error executing create notification query")
		return fmt.Errorf("error creating notification: %w", err)
	}
	n.IsRead = false
	return nil
}

// ListForUser returns one page of a user's notifications, newest first
func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, offset, limit uint64) ([]*models.Notification, int64, error) {
	where := squirrel.Eq{"user_id": userID}
	if unreadOnly {
		where["is_read"] = false
	}

	total, err := countTable(ctx, r.db, "notifications", where)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error counting notifications")
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Notification{}, 0, nil
	}

	sql, args, err := psql.Select(notificationColumns...).From("notifications").Where(where).
		OrderBy("created_at DESC", "id DESC").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing notifications")
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// CountUnread returns the number of unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return countTable(ctx, r.db, "notifications", squirrel.Eq{"user_id": userID, "is_read": false})
}

// MarkRead marks one notification of the user as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	sql, args, err := psql.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error marking notification read")
		return fmt.Errorf("error updating notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := psql.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark all read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error marking notifications read")
		return 0, fmt.Errorf("error updating notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one notification of the user
func (r *NotificationRepository) Delete(ctx context.Context, userID, id int64) error {
	sql, args, err := psql.Delete("notifications").Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete notification query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("notificationID", id).Msg("Error deleting notification")
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
