package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// RequestService defines the interface for request operations
type RequestService interface {
	List(ctx context.Context, p *appauth.Principal, filter dto.RequestFilter) (*dto.ListResponse[*models.Request], error)
	GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Request, error)
	Create(ctx context.Context, p *appauth.Principal, req *dto.CreateRequestRequest) (*models.Request, error)
	Update(ctx context.Context, p *appauth.Principal, id int64, req *dto.UpdateRequestRequest) (*models.Request, error)
	UpdateStatus(ctx context.Context, p *appauth.Principal, id int64, req *dto.UpdateRequestStatusRequest) (*models.Request, error)
	Delete(ctx context.Context, id int64) error
}

type requestServiceImpl struct {
	requests      RequestStore
	interns       InternStore
	notifications NotificationService
	logger        zerolog.Logger
}

// NewRequestService creates a new request service
func NewRequestService(requests RequestStore, interns InternStore, notifications NotificationService, logger zerolog.Logger) RequestService {
	return &requestServiceImpl{
		requests:      requests,
		interns:       interns,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *requestServiceImpl) List(ctx context.Context, p *appauth.Principal, filter dto.RequestFilter) (*dto.ListResponse[*models.Request], error) {
	params := repositories.RequestListParams{
		InternID: filter.InternID,
		Scope:    p.Scope(),
	}
	if filter.Status != "" {
		status := models.RequestStatus(filter.Status)
		params.Status = &status
	}
	if filter.Type != "" {
		t := models.RequestType(filter.Type)
		params.Type = &t
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.requests.List(ctx, params, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse[*models.Request]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// load returns a request together with its intern when the caller may see it
func (s *requestServiceImpl) load(ctx context.Context, p *appauth.Principal, id int64) (*models.Request, *models.Intern, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	intern, err := s.interns.GetByID(ctx, req.InternID)
	if err != nil {
		return nil, nil, err
	}
	if !p.CanSeeIntern(intern) {
		return nil, nil, apperrors.ErrRequestNotFound
	}
	return req, intern, nil
}

func (s *requestServiceImpl) GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Request, error) {
	req, _, err := s.load(ctx, p, id)
	return req, err
}

// Create files a request. Interns always file for themselves; staff name the
// intern. The intern's tutor is notified.
func (s *requestServiceImpl) Create(ctx context.Context, p *appauth.Principal, in *dto.CreateRequestRequest) (*models.Request, error) {
	intern, err := s.targetIntern(ctx, p, in.InternID)
	if err != nil {
		return nil, err
	}

	req := &models.Request{
		InternID:    intern.ID,
		TutorID:     intern.TutorID,
		Type:        models.RequestType(in.Type),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("requestId", req.ID).Int64("internId", intern.ID).Msg("Request created")

	if intern.TutorID != nil {
		message := fmt.Sprintf("%s filed a new request: %q.", internDisplayName(intern), req.Title)
		if _, err := s.notifications.Notify(ctx, *intern.TutorID, "New request", message, "/tuteur"); err != nil {
			s.logger.Warn().Err(err).Int64("requestId", req.ID).Msg("Failed to notify tutor of new request")
		}
	}

	return s.requests.GetByID(ctx, req.ID)
}

func (s *requestServiceImpl) targetIntern(ctx context.Context, p *appauth.Principal, internID *int64) (*models.Intern, error) {
	if p.Role == models.RoleIntern {
		if p.UserID == 0 {
			return nil, apperrors.NewForbiddenError("An intern profile is required to file requests")
		}
		intern, err := s.interns.GetByUserID(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		if internID != nil && *internID != intern.ID {
			return nil, apperrors.NewForbiddenError("Interns can only file requests for themselves")
		}
		return intern, nil
	}

	if internID == nil {
		return nil, apperrors.NewValidationError("internId is required")
	}
	intern, err := s.interns.GetByID(ctx, *internID)
	if err != nil {
		return nil, err
	}
	if !p.CanSeeIntern(intern) {
		return nil, apperrors.ErrInternNotFound
	}
	return intern, nil
}

// Update edits the content of a request. Interns may only edit their own
// requests while they are pending.
func (s *requestServiceImpl) Update(ctx context.Context, p *appauth.Principal, id int64, in *dto.UpdateRequestRequest) (*models.Request, error) {
	req, _, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if p.Role == models.RoleIntern && req.Status != models.RequestStatusPending {
		return nil, apperrors.NewForbiddenError("Only pending requests can be edited")
	}

	if in.Type != nil {
		req.Type = models.RequestType(*in.Type)
	}
	if in.Title != nil {
		req.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		req.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.requests.UpdateContent(ctx, req); err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, id)
}

// UpdateStatus sets any status value and notifies the intern's user with a
// message derived from the new status
func (s *requestServiceImpl) UpdateStatus(ctx context.Context, p *appauth.Principal, id int64, in *dto.UpdateRequestStatusRequest) (*models.Request, error) {
	req, intern, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	status := models.RequestStatus(in.Status)
	var response *string
	if in.Response != nil {
		trimmed := strings.TrimSpace(*in.Response)
		if trimmed != "" {
			response = &trimmed
		}
	}

	if err := s.requests.UpdateStatus(ctx, id, status, response, p.UserID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("requestId", id).Str("status", string(status)).Int64("by", p.UserID).Msg("Request status updated")

	title, message := statusNotification(req.Title, status, response)
	if _, err := s.notifications.Notify(ctx, intern.UserID, title, message, "/stagiaire"); err != nil {
		s.logger.Warn().Err(err).Int64("requestId", id).Msg("Failed to notify intern of status change")
	}

	return s.requests.GetByID(ctx, id)
}

// statusNotification builds the title and message sent on a status change
func statusNotification(requestTitle string, status models.RequestStatus, response *string) (string, string) {
	label := status.Label()
	title := "Request " + label
	message := fmt.Sprintf("Your request %q is now %s.", requestTitle, label)
	if response != nil && *response != "" {
		message += " Response: " + *response
	}
	return title, message
}

func (s *requestServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.requests.Delete(ctx, id)
}

func internDisplayName(intern *models.Intern) string {
	name := strings.TrimSpace(intern.FirstName + " " + intern.LastName)
	if name == "" {
		return fmt.Sprintf("Intern #%d", intern.ID)
	}
	return name
}
