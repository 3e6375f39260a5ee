package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// AdminController serves application settings and dashboard statistics
type AdminController struct {
	settingService services.SettingService
	statsService   services.StatsService
	logger         zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(settingService services.SettingService, statsService services.StatsService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		settingService: settingService,
		statsService:   statsService,
		logger:         logger,
	}
}

// ListSettings godoc
// @Summary List settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Setting}
// @Router /settings [get]
func (c *AdminController) ListSettings(ctx *gin.Context) {
	settings, err := c.settingService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settings))
}

// UpdateSetting godoc
// @Summary Set a setting
// @Description Creates the key when it does not exist. Keys are lowercase letters, digits and underscores.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param request body dto.UpdateSettingRequest true "Value"
// @Success 200 {object} dto.APIResponse{data=models.Setting}
// @Failure 400 {object} dto.APIResponse "Invalid key"
// @Router /settings/{key} [put]
func (c *AdminController) UpdateSetting(ctx *gin.Context) {
	var req dto.UpdateSettingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	setting, err := c.settingService.Update(ctx.Request.Context(), ctx.Param("key"), *req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("key", setting.Key).Msg("Setting updated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(setting))
}

// GetStats godoc
// @Summary Dashboard statistics
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse}
// @Failure 500 {object} dto.APIResponse "A count failed"
// @Router /stats [get]
func (c *AdminController) GetStats(ctx *gin.Context) {
	stats, err := c.statsService.Get(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}
