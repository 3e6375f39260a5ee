package models

import "time"

// Evaluation is a scored review of an intern by a tutor or HR
type Evaluation struct {
	ID           int64              `json:"id" db:"id"`
	InternID     int64              `json:"internId" db:"intern_id"`
	EvaluatorID  int64              `json:"evaluatorId" db:"evaluator_id"`
	Period       string             `json:"period" db:"period"`
	Criteria     map[string]float64 `json:"criteria" db:"criteria"`
	OverallScore float64            `json:"overallScore" db:"overall_score"`
	Comments     string             `json:"comments,omitempty" db:"comments"`
	CreatedAt    time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" db:"updated_at"`
}

// AverageScore returns the mean of all criteria, 0 when there are none
func AverageScore(criteria map[string]float64) float64 {
	if len(criteria) == 0 {
		return 0
	}
	var total float64
	for _, v := range criteria {
		total += v
	}
	return total / float64(len(criteria))
}
