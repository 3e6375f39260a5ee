package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// NotificationController handles the caller's notifications and staff broadcasts
type NotificationController struct {
	notificationService services.NotificationService
	logger              zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		logger:              logger,
	}
}

// ListNotifications returns the caller's notifications, newest first
// @Summary List own notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Notification]}
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter dto.NotificationFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	notifications, err := c.notificationService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notifications))
}

// UnreadCount returns how many notifications the caller has not read
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	count, err := c.notificationService.UnreadCount(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{Count: count}))
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /notifications/{id}/read [patch]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Notification marked as read"}))
}

// MarkAllRead marks every notification of the caller as read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse} "count holds the number of notifications updated"
// @Router /notifications/read-all [patch]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	n, err := c.notificationService.MarkAllRead(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{Count: n}))
}

// DeleteNotification removes one of the caller's notifications
// @Summary Delete notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /notifications/{id} [delete]
func (c *NotificationController) DeleteNotification(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Notification deleted"}))
}

// Broadcast sends one notification to many users
// @Summary Broadcast notification
// @Description Targets every active user of a role or an explicit list of user ids. Recipients that fail are listed in failures and the rest are still delivered.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BroadcastRequest true "Broadcast"
// @Success 201 {object} dto.APIResponse{data=dto.BroadcastResult} "Delivered, possibly partially"
// @Failure 400 {object} dto.APIResponse "No recipients"
// @Failure 500 {object} dto.APIResponse "Every recipient failed"
// @Router /notifications/broadcast [post]
func (c *NotificationController) Broadcast(ctx *gin.Context) {
	var req dto.BroadcastRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, failures, err := c.notificationService.Broadcast(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusCreated
	if len(failures) > 0 {
		c.logger.Warn().Int("sent", result.Sent).Int("failed", result.Failed).Msg("Broadcast partially failed")
		if result.Sent == 0 {
			status = http.StatusInternalServerError
		}
	}
	ctx.JSON(status, dto.NewPartialResponse(result, failures, result.Sent))
}
