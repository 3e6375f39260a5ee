package dto

import "time"

// CreatePlanningRequest schedules an entry for an intern
type CreatePlanningRequest struct {
	InternID    int64      `json:"internId" binding:"required,min=1"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Kind        string     `json:"kind" binding:"omitempty,oneof=task meeting milestone"`
	StartAt     time.Time  `json:"startAt" binding:"required"`
	EndAt       *time.Time `json:"endAt"`
}

// UpdatePlanningRequest changes any subset of a planning entry
type UpdatePlanningRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Kind        *string    `json:"kind" binding:"omitempty,oneof=task meeting milestone"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
}

// PlanningFilter bounds a planning query
type PlanningFilter struct {
	InternID *int64     `form:"internId"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}
