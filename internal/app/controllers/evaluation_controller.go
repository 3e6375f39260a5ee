package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// EvaluationController handles intern evaluations
type EvaluationController struct {
	evaluationService services.EvaluationService
	logger            zerolog.Logger
}

// NewEvaluationController creates a new EvaluationController
func NewEvaluationController(evaluationService services.EvaluationService, logger zerolog.Logger) *EvaluationController {
	return &EvaluationController{
		evaluationService: evaluationService,
		logger:            logger,
	}
}

// ListEvaluations godoc
// @Summary List evaluations
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param internId query int false "Intern filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Evaluation]}
// @Router /evaluations [get]
func (c *EvaluationController) ListEvaluations(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter dto.EvaluationFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	evaluations, err := c.evaluationService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluations))
}

// GetEvaluation godoc
// @Summary Get evaluation
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Success 200 {object} dto.APIResponse{data=models.Evaluation}
// @Failure 404 {object} dto.APIResponse "Evaluation not found"
// @Router /evaluations/{id} [get]
func (c *EvaluationController) GetEvaluation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	evaluation, err := c.evaluationService.GetByID(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluation))
}

// CreateEvaluation godoc
// @Summary Create evaluation
// @Description Scores are given per criterion from 0 to 20. The overall score is their average.
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEvaluationRequest true "Evaluation"
// @Success 201 {object} dto.APIResponse{data=models.Evaluation}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Intern not found"
// @Router /evaluations [post]
func (c *EvaluationController) CreateEvaluation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateEvaluationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	evaluation, err := c.evaluationService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(evaluation))
}

// UpdateEvaluation godoc
// @Summary Update evaluation
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Param request body dto.UpdateEvaluationRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Evaluation}
// @Failure 404 {object} dto.APIResponse "Evaluation not found"
// @Router /evaluations/{id} [put]
func (c *EvaluationController) UpdateEvaluation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateEvaluationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	evaluation, err := c.evaluationService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluation))
}

// DeleteEvaluation godoc
// @Summary Delete evaluation
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Evaluation not found"
// @Router /evaluations/{id} [delete]
func (c *EvaluationController) DeleteEvaluation(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.evaluationService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Evaluation deleted"}))
}
