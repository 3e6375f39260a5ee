package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// InternController handles intern records
type InternController struct {
	internService services.InternService
	logger        zerolog.Logger
}

// NewInternController creates a new InternController
func NewInternController(internService services.InternService, logger zerolog.Logger) *InternController {
	return &InternController{
		internService: internService,
		logger:        logger,
	}
}

// ListInterns returns the interns visible to the caller
// @Summary List interns
// @Description Staff see every intern, tutors their supervised interns, interns only themselves
// @Tags interns
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(active, done, suspended)
// @Param tutorId query int false "Tutor filter"
// @Param search query string false "Matches name, email or company"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Intern]}
// @Router /interns [get]
func (c *InternController) ListInterns(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter dto.InternFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	interns, err := c.internService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(interns))
}

// GetMyIntern returns the caller's own intern record
// @Summary Current intern record
// @Tags interns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Intern}
// @Failure 404 {object} dto.APIResponse "No intern record for the caller"
// @Router /interns/me [get]
func (c *InternController) GetMyIntern(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	intern, err := c.internService.GetMine(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(intern))
}

// GetIntern returns one intern
// @Summary Get intern
// @Tags interns
// @Produce json
// @Security BearerAuth
// @Param id path int true "Intern ID"
// @Success 200 {object} dto.APIResponse{data=models.Intern}
// @Failure 404 {object} dto.APIResponse "Intern not found"
// @Router /interns/{id} [get]
func (c *InternController) GetIntern(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	intern, err := c.internService.GetByID(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(intern))
}

// GetInternByUser returns the intern record attached to an account
// @Summary Get intern by user
// @Tags interns
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.Intern}
// @Failure 404 {object} dto.APIResponse "Intern not found"
// @Router /interns/by-user/{userId} [get]
func (c *InternController) GetInternByUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.ParseIDParam(ctx, "userId")
	if !ok {
		return
	}

	intern, err := c.internService.GetByUserID(ctx.Request.Context(), p, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(intern))
}

// CreateIntern attaches an intern record to an account
// @Summary Create intern
// @Tags interns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInternRequest true "Intern"
// @Success 201 {object} dto.APIResponse{data=models.Intern}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /interns [post]
func (c *InternController) CreateIntern(ctx *gin.Context) {
	var req dto.CreateInternRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	intern, err := c.internService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(intern))
}

// UpdateIntern changes an intern record
// @Summary Update intern
// @Tags interns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Intern ID"
// @Param request body dto.UpdateInternRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Intern}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Intern not found"
// @Router /interns/{id} [put]
func (c *InternController) UpdateIntern(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateInternRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	intern, err := c.internService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(intern))
}

// DeleteIntern removes an intern record with its requests, evaluations and planning
// @Summary Delete intern
// @Tags interns
// @Produce json
// @Security BearerAuth
// @Param id path int true "Intern ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Intern not found"
// @Router /interns/{id} [delete]
func (c *InternController) DeleteIntern(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.internService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Intern deleted"}))
}
