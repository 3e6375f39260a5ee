package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/email"
	"github.com/yigit/internhub/internal/pkg/helpers"
	"github.com/yigit/internhub/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// EventNotification is the websocket event type for a new notification
const EventNotification = "notification"

const broadcastConcurrency = 8

// Pusher delivers realtime events to connected users
type Pusher interface {
	Push(userID int64, eventType string, payload interface{})
}

// NotificationService defines the interface for notification operations
type NotificationService interface {
	Notify(ctx context.Context, userID int64, title, message, link string) (*models.Notification, error)
	List(ctx context.Context, p *appauth.Principal, filter dto.NotificationFilter) (*dto.ListResponse[*models.Notification], error)
	UnreadCount(ctx context.Context, p *appauth.Principal) (int64, error)
	MarkRead(ctx context.Context, p *appauth.Principal, id int64) error
	MarkAllRead(ctx context.Context, p *appauth.Principal) (int64, error)
	Delete(ctx context.Context, p *appauth.Principal, id int64) error
	Broadcast(ctx context.Context, req *dto.BroadcastRequest) (*dto.BroadcastResult, []dto.ItemFailure, error)
}

type notificationServiceImpl struct {
	notifications NotificationStore
	users         UserStore
	pusher        Pusher
	mailer        email.EmailService
	emailEnabled  bool
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NotificationOptions carries the optional collaborators of the service
type NotificationOptions struct {
	Pusher       Pusher
	Mailer       email.EmailService
	EmailEnabled bool
	Metrics      *metrics.Metrics
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications NotificationStore, users UserStore, opts NotificationOptions, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		users:         users,
		pusher:        opts.Pusher,
		mailer:        opts.Mailer,
		emailEnabled:  opts.EmailEnabled && opts.Mailer != nil,
		metrics:       opts.Metrics,
		logger:        logger,
	}
}

// Notify stores a notification, pushes it to the recipient's open sockets and
// optionally mails it
func (s *notificationServiceImpl) Notify(ctx context.Context, userID int64, title, message, link string) (*models.Notification, error) {
	if userID <= 0 {
		return nil, apperrors.NewValidationError("Notification recipient is required")
	}

	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.metrics.NotificationResult(false)
		return nil, fmt.Errorf("failed to create notification for user %d: %w", userID, err)
	}
	s.metrics.NotificationResult(true)

	if s.pusher != nil {
		s.pusher.Push(userID, EventNotification, n)
	}
	if s.emailEnabled {
		s.sendEmail(ctx, n)
	}
	return n, nil
}

func (s *notificationServiceImpl) sendEmail(ctx context.Context, n *models.Notification) {
	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userId", n.UserID).Msg("Cannot load recipient for notification email")
		return
	}
	go func() {
		if err := s.mailer.SendNotificationEmail(user.Email, user.FullName(), n.Title, n.Message, n.Link); err != nil {
			s.logger.Warn().Err(err).Int64("notificationId", n.ID).Msg("Failed to send notification email")
		}
	}()
}

func (s *notificationServiceImpl) List(ctx context.Context, p *appauth.Principal, filter dto.NotificationFilter) (*dto.ListResponse[*models.Notification], error) {
	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	if p.UserID == 0 {
		return &dto.ListResponse[*models.Notification]{
			Items:      []*models.Notification{},
			Pagination: helpers.NewPaginationInfo(0, page, size),
		}, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.notifications.ListForUser(ctx, p.UserID, filter.Unread, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse[*models.Notification]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, p *appauth.Principal) (int64, error) {
	if p.UserID == 0 {
		return 0, nil
	}
	return s.notifications.CountUnread(ctx, p.UserID)
}

// MarkRead only touches notifications of the caller; others look missing
func (s *notificationServiceImpl) MarkRead(ctx context.Context, p *appauth.Principal, id int64) error {
	if p.UserID == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return s.notifications.MarkRead(ctx, p.UserID, id)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, p *appauth.Principal) (int64, error) {
	if p.UserID == 0 {
		return 0, nil
	}
	return s.notifications.MarkAllRead(ctx, p.UserID)
}

func (s *notificationServiceImpl) Delete(ctx context.Context, p *appauth.Principal, id int64) error {
	if p.UserID == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return s.notifications.Delete(ctx, p.UserID, id)
}

// Broadcast sends one notification per recipient concurrently. Failed
// recipients are reported individually instead of failing the whole call.
func (s *notificationServiceImpl) Broadcast(ctx context.Context, req *dto.BroadcastRequest) (*dto.BroadcastResult, []dto.ItemFailure, error) {
	recipients, err := s.recipients(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var (
		mu       sync.Mutex
		sent     []*models.Notification
		failures []dto.ItemFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(broadcastConcurrency)
	for _, userID := range recipients {
		g.Go(func() error {
			n, err := s.Notify(gctx, userID, req.Title, req.Message, req.Link)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn().Err(err).Int64("userId", userID).Msg("Broadcast delivery failed")
				failures = append(failures, dto.ItemFailure{ID: userID, Error: publicItemError(err)})
				return nil
			}
			sent = append(sent, n)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(sent, func(i, j int) bool { return sent[i].UserID < sent[j].UserID })
	sort.Slice(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })

	s.logger.Info().Int("sent", len(sent)).Int("failed", len(failures)).Msg("Broadcast completed")
	return &dto.BroadcastResult{
		Sent:          len(sent),
		Failed:        len(failures),
		Notifications: sent,
	}, failures, nil
}

func (s *notificationServiceImpl) recipients(ctx context.Context, req *dto.BroadcastRequest) ([]int64, error) {
	var ids []int64
	switch {
	case len(req.UserIDs) > 0:
		ids = req.UserIDs
	case req.Role != "":
		var err error
		ids, err = s.users.ListIDsByRole(ctx, models.Role(req.Role), true)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("Either role or userIds is required")
	}

	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NewValidationError("No recipients matched")
	}
	return out, nil
}

// publicItemError hides database details from per item failures
func publicItemError(err error) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "failed to create notification"
}
