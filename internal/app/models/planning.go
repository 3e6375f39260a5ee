package models

import "time"

// PlanningEntry is a scheduled task, meeting or milestone for an intern
type PlanningEntry struct {
	ID          int64        `json:"id" db:"id"`
	InternID    int64        `json:"internId" db:"intern_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description,omitempty" db:"description"`
	Kind        PlanningKind `json:"kind" db:"kind"`
	StartAt     time.Time    `json:"startAt" db:"start_at"`
	EndAt       *time.Time   `json:"endAt,omitempty" db:"end_at"`
	CreatedBy   int64        `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}
