package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// Intern is the internship record attached to exactly one user
type Intern struct {
	ID         int64        `json:"id" db:"id"`
	UserID     int64        `json:"userId" db:"user_id"`
	TutorID    *int64       `json:"tutorId,omitempty" db:"tutor_id"`
	Company    string       `json:"company" db:"company"`
	Position   string       `json:"position" db:"position"`
	Department string       `json:"department,omitempty" db:"department"`
	StartDate  time.Time    `json:"startDate" db:"start_date"`
	EndDate    time.Time    `json:"endDate" db:"end_date"`
	Status     InternStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt" db:"updated_at"`

	// Joined from users, not persisted on interns
	FirstName string `json:"firstName,omitempty" db:"-"`
	LastName  string `json:"lastName,omitempty" db:"-"`
	Email     string `json:"email,omitempty" db:"-"`
	TutorName string `json:"tutorName,omitempty" db:"-"`
}

// MarshalJSON writes the internship period as calendar dates
func (i Intern) MarshalJSON() ([]byte, error) {
	type intern Intern
	return json.Marshal(struct {
		intern
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}{
		intern:    intern(i),
		StartDate: i.StartDate.Format(DateLayout),
		EndDate:   i.EndDate.Format(DateLayout),
	})
}
