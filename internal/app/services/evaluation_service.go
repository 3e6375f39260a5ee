package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// EvaluationService defines the interface for evaluation operations
type EvaluationService interface {
	List(ctx context.Context, p *appauth.Principal, filter dto.EvaluationFilter) (*dto.ListResponse[*models.Evaluation], error)
	GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Evaluation, error)
	Create(ctx context.Context, p *appauth.Principal, req *dto.CreateEvaluationRequest) (*models.Evaluation, error)
	Update(ctx context.Context, p *appauth.Principal, id int64, req *dto.UpdateEvaluationRequest) (*models.Evaluation, error)
	Delete(ctx context.Context, id int64) error
}

type evaluationServiceImpl struct {
	evaluations   EvaluationStore
	interns       InternStore
	notifications NotificationService
	logger        zerolog.Logger
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(evaluations EvaluationStore, interns InternStore, notifications NotificationService, logger zerolog.Logger) EvaluationService {
	return &evaluationServiceImpl{
		evaluations:   evaluations,
		interns:       interns,
		notifications: notifications,
		logger:        logger,
	}
}

// overallScore averages the criteria, rounded to two decimals
func overallScore(criteria map[string]float64) float64 {
	return math.Round(models.AverageScore(criteria)*100) / 100
}

func (s *evaluationServiceImpl) List(ctx context.Context, p *appauth.Principal, filter dto.EvaluationFilter) (*dto.ListResponse[*models.Evaluation], error) {
	params := repositories.EvaluationListParams{
		InternID: filter.InternID,
		Scope:    p.Scope(),
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.evaluations.List(ctx, params, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse[*models.Evaluation]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

func (s *evaluationServiceImpl) GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Evaluation, error) {
	e, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	intern, err := s.interns.GetByID(ctx, e.InternID)
	if err != nil {
		return nil, err
	}
	if !p.CanSeeIntern(intern) {
		return nil, apperrors.ErrEvaluationNotFound
	}
	return e, nil
}

// Create records an evaluation and notifies the evaluated intern
func (s *evaluationServiceImpl) Create(ctx context.Context, p *appauth.Principal, req *dto.CreateEvaluationRequest) (*models.Evaluation, error) {
	if p.UserID == 0 {
		return nil, apperrors.NewForbiddenError("A user profile is required to evaluate interns")
	}
	intern, err := s.interns.GetByID(ctx, req.InternID)
	if err != nil {
		return nil, err
	}
	if !p.CanSeeIntern(intern) {
		return nil, apperrors.ErrInternNotFound
	}
	if err := validateCriteria(req.Criteria); err != nil {
		return nil, err
	}

	e := &models.Evaluation{
		InternID:     intern.ID,
		EvaluatorID:  p.UserID,
		Period:       strings.TrimSpace(req.Period),
		Criteria:     req.Criteria,
		OverallScore: overallScore(req.Criteria),
		Comments:     strings.TrimSpace(req.Comments),
	}
	if err := s.evaluations.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("evaluationId", e.ID).Int64("internId", intern.ID).Float64("score", e.OverallScore).Msg("Evaluation created")

	message := fmt.Sprintf("A new evaluation for %q was recorded with an overall score of %.2f/20.", e.Period, e.OverallScore)
	if _, err := s.notifications.Notify(ctx, intern.UserID, "New evaluation", message, "/stagiaire"); err != nil {
		s.logger.Warn().Err(err).Int64("evaluationId", e.ID).Msg("Failed to notify intern of evaluation")
	}
	return e, nil
}

func (s *evaluationServiceImpl) Update(ctx context.Context, p *appauth.Principal, id int64, req *dto.UpdateEvaluationRequest) (*models.Evaluation, error) {
	e, err := s.GetByID(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Period != nil {
		e.Period = strings.TrimSpace(*req.Period)
	}
	if req.Criteria != nil {
		if err := validateCriteria(req.Criteria); err != nil {
			return nil, err
		}
		e.Criteria = req.Criteria
		e.OverallScore = overallScore(req.Criteria)
	}
	if req.Comments != nil {
		e.Comments = strings.TrimSpace(*req.Comments)
	}

	if err := s.evaluations.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.evaluations.GetByID(ctx, id)
}

func (s *evaluationServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.evaluations.Delete(ctx, id)
}

func validateCriteria(criteria map[string]float64) error {
	if len(criteria) == 0 {
		return apperrors.NewValidationError("At least one criterion is required")
	}
	for name, score := range criteria {
		if strings.TrimSpace(name) == "" {
			return apperrors.NewValidationError("Criterion names must not be empty")
		}
		if score < 0 || score > 20 {
			return apperrors.NewValidationError(fmt.Sprintf("Score of %q must be between 0 and 20", name))
		}
	}
	return nil
}
