package controllers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
)

// maxUploadSize caps the body of an upload request
const maxUploadSize = 20 << 20

// DocumentController handles stored documents
type DocumentController struct {
	documentService services.DocumentService
	templateService services.TemplateService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService services.DocumentService, templateService services.TemplateService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		templateService: templateService,
		logger:          logger,
	}
}

// ListDocuments returns the documents visible to the caller
// @Summary List documents
// @Description Interns only see their own visible documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param ownerId query int false "Owner filter"
// @Param requestId query int false "Request filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Document]}
// @Router /documents [get]
func (c *DocumentController) ListDocuments(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter dto.DocumentFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	documents, err := c.documentService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(documents))
}

// GetDocument returns the metadata of one document
// @Summary Get document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} dto.APIResponse{data=models.Document}
// @Failure 404 {object} dto.APIResponse "Document not found"
// @Router /documents/{id} [get]
func (c *DocumentController) GetDocument(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	doc, err := c.documentService.GetByID(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(doc))
}

// DownloadDocument streams the stored content
// @Summary Download document
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.APIResponse "Document not found"
// @Router /documents/{id}/download [get]
func (c *DocumentController) DownloadDocument(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	doc, body, err := c.documentService.Open(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name})
	ctx.DataFromReader(http.StatusOK, doc.Size, doc.MimeType, body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// UploadDocument stores a file
// @Summary Upload document
// @Description Interns upload for themselves and their uploads are always visible. Tutors may upload for supervised interns.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param ownerId formData int false "Owner user ID"
// @Param requestId formData int false "Related request"
// @Param name formData string false "Display name"
// @Param isVisible formData bool false "Visible to the owner"
// @Success 201 {object} dto.APIResponse{data=models.Document}
// @Failure 400 {object} dto.APIResponse "Missing file"
// @Failure 403 {object} dto.APIResponse "Cannot upload for this owner"
// @Router /documents [post]
func (c *DocumentController) UploadDocument(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadSize)

	var form dto.UploadDocumentForm
	if !middleware.BindForm(ctx, &form) {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "A file is required")
		return
	}

	doc, err := c.documentService.Upload(ctx.Request.Context(), p, &form, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("documentID", doc.ID).Int64("ownerID", doc.OwnerID).Int64("size", doc.Size).Msg("Document uploaded")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(doc))
}

// UpdateDocumentVisibility shows or hides a document from its owner
// @Summary Change document visibility
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param request body dto.UpdateVisibilityRequest true "Visibility"
// @Success 200 {object} dto.APIResponse{data=models.Document}
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Document not found"
// @Router /documents/{id}/visibility [patch]
func (c *DocumentController) UpdateDocumentVisibility(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateVisibilityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	doc, err := c.documentService.SetVisibility(ctx.Request.Context(), p, id, *req.IsVisible)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(doc))
}

// DeleteDocument removes a document and its content
// @Summary Delete document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Document not found"
// @Router /documents/{id} [delete]
func (c *DocumentController) DeleteDocument(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.documentService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Document deleted"}))
}

// GenerateDocument renders a template for an intern
// @Summary Generate document
// @Description Renders the chosen template, or the default one of the kind, with the intern's data. With store set the result is saved as a document owned by the intern.
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateDocumentRequest true "Generation parameters"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateDocumentResponse}
// @Failure 400 {object} dto.APIResponse "No template selected or rendering failed"
// @Failure 404 {object} dto.APIResponse "Intern or template not found"
// @Router /documents/generate [post]
func (c *DocumentController) GenerateDocument(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.GenerateDocumentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.templateService.Generate(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
