package models

import "time"

// Request is something an intern asks of HR or their tutor
type Request struct {
	ID          int64         `json:"id" db:"id"`
	InternID    int64         `json:"internId" db:"intern_id"`
	TutorID     *int64        `json:"tutorId,omitempty" db:"tutor_id"`
	Type        RequestType   `json:"type" db:"type"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description,omitempty" db:"description"`
	Status      RequestStatus `json:"status" db:"status"`
	Response    *string       `json:"response,omitempty" db:"response"`
	RespondedBy *int64        `json:"respondedBy,omitempty" db:"responded_by"`
	RespondedAt *time.Time    `json:"respondedAt,omitempty" db:"responded_at"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`

	// Joined
	InternUserID int64  `json:"internUserId,omitempty" db:"-"`
	InternName   string `json:"internName,omitempty" db:"-"`
}
