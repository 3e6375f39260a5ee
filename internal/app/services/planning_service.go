package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// PlanningService defines the interface for planning operations
type PlanningService interface {
	List(ctx context.Context, p *appauth.Principal, filter dto.PlanningFilter) ([]*models.PlanningEntry, error)
	GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.PlanningEntry, error)
	Create(ctx context.Context, p *appauth.Principal, req *dto.CreatePlanningRequest) (*models.PlanningEntry, error)
	Update(ctx context.Context, p *appauth.Principal, id int64, req *dto.UpdatePlanningRequest) (*models.PlanningEntry, error)
	Delete(ctx context.Context, p *appauth.Principal, id int64) error
}

type planningServiceImpl struct {
	planning PlanningStore
	interns  InternStore
	logger   zerolog.Logger
}

// NewPlanningService creates a new planning service
func NewPlanningService(planning PlanningStore, interns InternStore, logger zerolog.Logger) PlanningService {
	return &planningServiceImpl{planning: planning, interns: interns, logger: logger}
}

// List returns entries between From and To, inclusive of the whole To day
func (s *planningServiceImpl) List(ctx context.Context, p *appauth.Principal, filter dto.PlanningFilter) ([]*models.PlanningEntry, error) {
	params := repositories.PlanningListParams{
		InternID: filter.InternID,
		From:     filter.From,
		Scope:    p.Scope(),
	}
	if filter.To != nil {
		to := filter.To.Add(24*time.Hour - time.Nanosecond)
		params.To = &to
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, apperrors.NewValidationError("to must not precede from")
	}
	return s.planning.List(ctx, params)
}

func (s *planningServiceImpl) GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.PlanningEntry, error) {
	entry, err := s.planning.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleIntern(ctx, p, entry.InternID); err != nil {
		if errors.Is(err, apperrors.ErrInternNotFound) {
			return nil, apperrors.ErrPlanningNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *planningServiceImpl) visibleIntern(ctx context.Context, p *appauth.Principal, internID int64) (*models.Intern, error) {
	intern, err := s.interns.GetByID(ctx, internID)
	if err != nil {
		return nil, err
	}
	return visibleIntern(p, intern)
}

func (s *planningServiceImpl) Create(ctx context.Context, p *appauth.Principal, req *dto.CreatePlanningRequest) (*models.PlanningEntry, error) {
	if p.UserID == 0 {
		return nil, apperrors.NewForbiddenError("A user profile is required to plan")
	}
	intern, err := s.visibleIntern(ctx, p, req.InternID)
	if err != nil {
		return nil, err
	}

	entry := &models.PlanningEntry{
		InternID:    intern.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Kind:        models.PlanningKindTask,
		StartAt:     req.StartAt.UTC(),
		CreatedBy:   p.UserID,
	}
	if req.Kind != "" {
		entry.Kind = models.PlanningKind(req.Kind)
	}
	if req.EndAt != nil {
		end := req.EndAt.UTC()
		entry.EndAt = &end
	}
	if err := checkPlanningRange(entry); err != nil {
		return nil, err
	}

	if err := s.planning.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("planningId", entry.ID).Int64("internId", intern.ID).Str("kind", string(entry.Kind)).Msg("Planning entry created")
	return entry, nil
}

func (s *planningServiceImpl) Update(ctx context.Context, p *appauth.Principal, id int64, req *dto.UpdatePlanningRequest) (*models.PlanningEntry, error) {
	entry, err := s.GetByID(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		entry.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		entry.Description = strings.TrimSpace(*req.Description)
	}
	if req.Kind != nil {
		entry.Kind = models.PlanningKind(*req.Kind)
	}
	if req.StartAt != nil {
		entry.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		end := req.EndAt.UTC()
		entry.EndAt = &end
	}
	if err := checkPlanningRange(entry); err != nil {
		return nil, err
	}

	if err := s.planning.Update(ctx, entry); err != nil {
		return nil, err
	}
	return s.planning.GetByID(ctx, id)
}

func (s *planningServiceImpl) Delete(ctx context.Context, p *appauth.Principal, id int64) error {
	if _, err := s.GetByID(ctx, p, id); err != nil {
		return err
	}
	return s.planning.Delete(ctx, id)
}

func checkPlanningRange(entry *models.PlanningEntry) error {
	if entry.EndAt != nil && entry.EndAt.Before(entry.StartAt) {
		return apperrors.NewValidationError("endAt must not precede startAt")
	}
	return nil
}
