package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// RequestController handles intern requests
type RequestController struct {
	requestService services.RequestService
	logger         zerolog.Logger
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.RequestService, logger zerolog.Logger) *RequestController {
	return &RequestController{
		requestService: requestService,
		logger:         logger,
	}
}

// ListRequests returns the requests visible to the caller
// @Summary List requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, approved, rejected, in_progress, done)
// @Param internId query int false "Intern filter"
// @Param type query string false "Request type"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Request]}
// @Router /requests [get]
func (c *RequestController) ListRequests(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter dto.RequestFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	requests, err := c.requestService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests))
}

// GetRequest returns one request
// @Summary Get request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.Request}
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Router /requests/{id} [get]
func (c *RequestController) GetRequest(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	request, err := c.requestService.GetByID(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// CreateRequest files a new request
// @Summary Create request
// @Description Interns file for themselves. Staff must name the intern.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRequestRequest true "Request"
// @Success 201 {object} dto.APIResponse{data=models.Request}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Cannot file for another intern"
// @Router /requests [post]
func (c *RequestController) CreateRequest(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateRequestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(request))
}

// UpdateRequest edits a request
// @Summary Update request
// @Description Interns may only edit their pending requests
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.UpdateRequestRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Request}
// @Failure 403 {object} dto.APIResponse "Request is no longer pending"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Router /requests/{id} [put]
func (c *RequestController) UpdateRequest(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRequestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// UpdateRequestStatus records a decision and notifies the intern
// @Summary Change request status
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.UpdateRequestStatusRequest true "New status and optional response"
// @Success 200 {object} dto.APIResponse{data=models.Request}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Router /requests/{id}/status [patch]
func (c *RequestController) UpdateRequestStatus(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRequestStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.UpdateStatus(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("requestID", id).Str("status", string(request.Status)).Int64("by", p.UserID).Msg("Request status changed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// DeleteRequest removes a request
// @Summary Delete request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Request not found"
// @Router /requests/{id} [delete]
func (c *RequestController) DeleteRequest(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.requestService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Request deleted"}))
}
