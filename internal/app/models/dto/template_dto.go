package dto

// CreateTemplateRequest stores a new html/template document template
type CreateTemplateRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Kind    string `json:"kind" binding:"required,oneof=attestation convention custom"`
	Content string `json:"content" binding:"required"`
}

// UpdateTemplateRequest changes any subset of a template
type UpdateTemplateRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Kind    *string `json:"kind" binding:"omitempty,oneof=attestation convention custom"`
	Content *string `json:"content" binding:"omitempty,min=1"`
}

// UpdateSettingRequest sets the value of one setting
type UpdateSettingRequest struct {
	Value *string `json:"value" binding:"required,max=2000"`
}

// StatsResponse aggregates dashboard counters
type StatsResponse struct {
	UsersByRole      map[string]int64 `json:"usersByRole"`
	InternsByStatus  map[string]int64 `json:"internsByStatus"`
	RequestsByStatus map[string]int64 `json:"requestsByStatus"`
	Documents        int64            `json:"documents"`
	Evaluations      int64            `json:"evaluations"`
	UpcomingPlanning int64            `json:"upcomingPlanning"`
}
