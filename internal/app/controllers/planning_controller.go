package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// PlanningController handles planning entries
type PlanningController struct {
	planningService services.PlanningService
	logger          zerolog.Logger
}

// NewPlanningController creates a new PlanningController
func NewPlanningController(planningService services.PlanningService, logger zerolog.Logger) *PlanningController {
	return &PlanningController{
		planningService: planningService,
		logger:          logger,
	}
}

// ListPlanning returns entries in a date range
// @Summary List planning entries
// @Description Both bounds are dates (YYYY-MM-DD). The upper bound includes the whole day.
// @Tags planning
// @Produce json
// @Security BearerAuth
// @Param internId query int false "Intern filter"
// @Param from query string false "First day" format(date)
// @Param to query string false "Last day" format(date)
// @Success 200 {object} dto.APIResponse{data=[]models.PlanningEntry}
// @Failure 400 {object} dto.APIResponse "Invalid range"
// @Router /planning [get]
func (c *PlanningController) ListPlanning(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter dto.PlanningFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	entries, err := c.planningService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entries))
}

// GetPlanning returns one entry
// @Summary Get planning entry
// @Tags planning
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=models.PlanningEntry}
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Router /planning/{id} [get]
func (c *PlanningController) GetPlanning(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	entry, err := c.planningService.GetByID(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entry))
}

// CreatePlanning schedules an entry
// @Summary Create planning entry
// @Tags planning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePlanningRequest true "Entry"
// @Success 201 {object} dto.APIResponse{data=models.PlanningEntry}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Intern not found"
// @Router /planning [post]
func (c *PlanningController) CreatePlanning(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreatePlanningRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.planningService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(entry))
}

// UpdatePlanning changes an entry
// @Summary Update planning entry
// @Tags planning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body dto.UpdatePlanningRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.PlanningEntry}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Router /planning/{id} [put]
func (c *PlanningController) UpdatePlanning(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdatePlanningRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.planningService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entry))
}

// DeletePlanning removes an entry
// @Summary Delete planning entry
// @Tags planning
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Router /planning/{id} [delete]
func (c *PlanningController) DeletePlanning(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.planningService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Planning entry deleted"}))
}
