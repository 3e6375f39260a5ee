package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// InternService defines the interface for intern operations
type InternService interface {
	List(ctx context.Context, p *appauth.Principal, filter dto.InternFilter) (*dto.ListResponse[*models.Intern], error)
	GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Intern, error)
	GetByUserID(ctx context.Context, p *appauth.Principal, userID int64) (*models.Intern, error)
	GetMine(ctx context.Context, p *appauth.Principal) (*models.Intern, error)
	Create(ctx context.Context, req *dto.CreateInternRequest) (*models.Intern, error)
	Update(ctx context.Context, id int64, req *dto.UpdateInternRequest) (*models.Intern, error)
	Delete(ctx context.Context, id int64) error
}

type internServiceImpl struct {
	interns InternStore
	users   UserStore
	logger  zerolog.Logger
}

// NewInternService creates a new intern service
func NewInternService(interns InternStore, users UserStore, logger zerolog.Logger) InternService {
	return &internServiceImpl{interns: interns, users: users, logger: logger}
}

func (s *internServiceImpl) List(ctx context.Context, p *appauth.Principal, filter dto.InternFilter) (*dto.ListResponse[*models.Intern], error) {
	params := repositories.InternListParams{
		TutorID: filter.TutorID,
		Search:  strings.TrimSpace(filter.Search),
		Scope:   p.Scope(),
	}
	if filter.Status != "" {
		status := models.InternStatus(filter.Status)
		params.Status = &status
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.interns.List(ctx, params, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse[*models.Intern]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

func (s *internServiceImpl) GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Intern, error) {
	intern, err := s.interns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return visibleIntern(p, intern)
}

func (s *internServiceImpl) GetByUserID(ctx context.Context, p *appauth.Principal, userID int64) (*models.Intern, error) {
	intern, err := s.interns.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return visibleIntern(p, intern)
}

func (s *internServiceImpl) GetMine(ctx context.Context, p *appauth.Principal) (*models.Intern, error) {
	if p.UserID == 0 {
		return nil, apperrors.ErrInternNotFound
	}
	return s.interns.GetByUserID(ctx, p.UserID)
}

// visibleIntern hides interns outside the caller's scope as not found
func visibleIntern(p *appauth.Principal, intern *models.Intern) (*models.Intern, error) {
	if !p.CanSeeIntern(intern) {
		return nil, apperrors.ErrInternNotFound
	}
	return intern, nil
}

// Create attaches an internship to an existing user. A second internship for
// the same user is refused by the database unique constraint.
func (s *internServiceImpl) Create(ctx context.Context, req *dto.CreateInternRequest) (*models.Intern, error) {
	start, err := helpers.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid startDate")
	}
	end, err := helpers.ParseDate(req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid endDate")
	}
	if end.Before(start) {
		return nil, apperrors.NewValidationError("endDate must not precede startDate")
	}

	if err := s.checkUser(ctx, req.UserID, "userId", models.RoleIntern); err != nil {
		return nil, err
	}
	if req.TutorID != nil {
		if err := s.checkUser(ctx, *req.TutorID, "tutorId", models.RoleTutor, models.RoleHR, models.RoleAdmin); err != nil {
			return nil, err
		}
	}

	intern := &models.Intern{
		UserID:     req.UserID,
		TutorID:    req.TutorID,
		Company:    strings.TrimSpace(req.Company),
		Position:   strings.TrimSpace(req.Position),
		Department: strings.TrimSpace(req.Department),
		StartDate:  start,
		EndDate:    end,
		Status:     models.InternStatusActive,
	}
	if req.Status != "" {
		intern.Status = models.InternStatus(req.Status)
	}

	if err := s.interns.Create(ctx, intern); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("internId", intern.ID).Int64("userId", intern.UserID).Msg("Intern created")
	return s.interns.GetByID(ctx, intern.ID)
}

// checkUser verifies that id refers to a user holding one of roles
func (s *internServiceImpl) checkUser(ctx context.Context, id int64, field string, roles ...models.Role) error {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return apperrors.NewValidationError(field + " does not reference an existing user")
	}
	if err != nil {
		return err
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return apperrors.NewValidationError(field + " references a user with role " + string(user.Role))
}

func (s *internServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateInternRequest) (*models.Intern, error) {
	intern, err := s.interns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TutorID != nil {
		if err := s.checkUser(ctx, *req.TutorID, "tutorId", models.RoleTutor, models.RoleHR, models.RoleAdmin); err != nil {
			return nil, err
		}
		intern.TutorID = req.TutorID
	}
	if req.Company != nil {
		intern.Company = strings.TrimSpace(*req.Company)
	}
	if req.Position != nil {
		intern.Position = strings.TrimSpace(*req.Position)
	}
	if req.Department != nil {
		intern.Department = strings.TrimSpace(*req.Department)
	}
	if req.StartDate != nil {
		if intern.StartDate, err = helpers.ParseDate(*req.StartDate); err != nil {
			return nil, apperrors.NewValidationError("Invalid startDate")
		}
	}
	if req.EndDate != nil {
		if intern.EndDate, err = helpers.ParseDate(*req.EndDate); err != nil {
			return nil, apperrors.NewValidationError("Invalid endDate")
		}
	}
	if intern.EndDate.Before(intern.StartDate) {
		return nil, apperrors.NewValidationError("endDate must not precede startDate")
	}
	if req.Status != nil {
		intern.Status = models.InternStatus(*req.Status)
	}

	if err := s.interns.Update(ctx, intern); err != nil {
		return nil, err
	}
	return s.interns.GetByID(ctx, id)
}

func (s *internServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.interns.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("internId", id).Msg("Intern deleted")
	return nil
}
