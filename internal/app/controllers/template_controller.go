package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// TemplateController handles document templates
type TemplateController struct {
	templateService services.TemplateService
	logger          zerolog.Logger
}

// NewTemplateController creates a new TemplateController
func NewTemplateController(templateService services.TemplateService, logger zerolog.Logger) *TemplateController {
	return &TemplateController{
		templateService: templateService,
		logger:          logger,
	}
}

// ListTemplates godoc
// @Summary List templates
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param kind query string false "Kind filter" Enums(attestation, convention, custom)
// @Success 200 {object} dto.APIResponse{data=[]models.DocumentTemplate}
// @Router /templates [get]
func (c *TemplateController) ListTemplates(ctx *gin.Context) {
	templates, err := c.templateService.List(ctx.Request.Context(), ctx.Query("kind"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(templates))
}

// GetTemplate godoc
// @Summary Get template
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=models.DocumentTemplate}
// @Failure 404 {object} dto.APIResponse "Template not found"
// @Router /templates/{id} [get]
func (c *TemplateController) GetTemplate(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	tmpl, err := c.templateService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tmpl))
}

// CreateTemplate godoc
// @Summary Create template
// @Description content is an html/template source. It is parsed and test-rendered before being stored.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTemplateRequest true "Template"
// @Success 201 {object} dto.APIResponse{data=models.DocumentTemplate}
// @Failure 400 {object} dto.APIResponse "Template does not parse"
// @Router /templates [post]
func (c *TemplateController) CreateTemplate(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateTemplateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tmpl, err := c.templateService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(tmpl))
}

// UpdateTemplate godoc
// @Summary Update template
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body dto.UpdateTemplateRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.DocumentTemplate}
// @Failure 400 {object} dto.APIResponse "Template does not parse"
// @Failure 404 {object} dto.APIResponse "Template not found"
// @Router /templates/{id} [put]
func (c *TemplateController) UpdateTemplate(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateTemplateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	tmpl, err := c.templateService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tmpl))
}

// DeleteTemplate godoc
// @Summary Delete template
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.APIResponse "Template not found"
// @Router /templates/{id} [delete]
func (c *TemplateController) DeleteTemplate(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.templateService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Template deleted"}))
}
