package dto

// CreateEvaluationRequest scores an intern on named criteria (0 to 20)
type CreateEvaluationRequest struct {
	InternID int64              `json:"internId" binding:"required,min=1"`
	Period   string             `json:"period" binding:"required,max=100" example:"mid-term"`
	Criteria map[string]float64 `json:"criteria" binding:"required,min=1,dive,gte=0,lte=20"`
	Comments string             `json:"comments" binding:"omitempty,max=5000"`
}

// UpdateEvaluationRequest changes any subset of an evaluation
type UpdateEvaluationRequest struct {
	Period   *string            `json:"period" binding:"omitempty,min=1,max=100"`
	Criteria map[string]float64 `json:"criteria" binding:"omitempty,min=1,dive,gte=0,lte=20"`
	Comments *string            `json:"comments" binding:"omitempty,max=5000"`
}

// EvaluationFilter holds list filters
type EvaluationFilter struct {
	InternID *int64 `form:"internId"`
	Page     int    `form:"page"`
	Size     int    `form:"size"`
}
