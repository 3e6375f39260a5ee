package dto

import "github.com/yigit/internhub/internal/app/models"

// UploadDocumentForm holds the non-file fields of a multipart upload
type UploadDocumentForm struct {
	OwnerID   *int64 `form:"ownerId" binding:"omitempty,min=1"`
	RequestID *int64 `form:"requestId" binding:"omitempty,min=1"`
	Name      string `form:"name" binding:"omitempty,max=255"`
	IsVisible *bool  `form:"isVisible"`
}

// UpdateVisibilityRequest toggles whether the owner can see a document
type UpdateVisibilityRequest struct {
	IsVisible *bool `json:"isVisible" binding:"required"`
}

// DocumentFilter holds list filters
type DocumentFilter struct {
	OwnerID   *int64 `form:"ownerId"`
	RequestID *int64 `form:"requestId"`
	Page      int    `form:"page"`
	Size      int    `form:"size"`
}

// GenerateDocumentRequest renders a template for one intern
type GenerateDocumentRequest struct {
	InternID   int64  `json:"internId" binding:"required,min=1"`
	TemplateID *int64 `json:"templateId" binding:"omitempty,min=1"`
	Kind       string `json:"kind" binding:"omitempty,oneof=attestation convention custom"`
	Store      bool   `json:"store"`
}

// GenerateDocumentResponse carries the rendered HTML and, when stored, the document row
type GenerateDocumentResponse struct {
	HTML     string           `json:"html"`
	Document *models.Document `json:"document,omitempty"`
}
