package dto

import "github.com/yigit/internhub/internal/app/models"

// DateLayout is the wire format of calendar dates
const DateLayout = models.DateLayout

// CreateInternRequest attaches an internship to an existing user
type CreateInternRequest struct {
	UserID     int64  `json:"userId" binding:"required,min=1"`
	TutorID    *int64 `json:"tutorId" binding:"omitempty,min=1"`
	Company    string `json:"company" binding:"required,max=255"`
	Position   string `json:"position" binding:"required,max=255"`
	Department string `json:"department" binding:"omitempty,max=255"`
	StartDate  string `json:"startDate" binding:"required,datetime=2006-01-02" example:"2025-02-03"`
	EndDate    string `json:"endDate" binding:"required,datetime=2006-01-02" example:"2025-07-31"`
	Status     string `json:"status" binding:"omitempty,oneof=active done suspended"`
}

// UpdateInternRequest changes any subset of internship fields
type UpdateInternRequest struct {
	TutorID    *int64  `json:"tutorId" binding:"omitempty,min=1"`
	Company    *string `json:"company" binding:"omitempty,min=1,max=255"`
	Position   *string `json:"position" binding:"omitempty,min=1,max=255"`
	Department *string `json:"department" binding:"omitempty,max=255"`
	StartDate  *string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Status     *string `json:"status" binding:"omitempty,oneof=active done suspended"`
}

// InternFilter holds list filters
type InternFilter struct {
	Status  string `form:"status" binding:"omitempty,oneof=active done suspended"`
	TutorID *int64 `form:"tutorId"`
	Search  string `form:"search"`
	Page    int    `form:"page"`
	Size    int    `form:"size"`
}
