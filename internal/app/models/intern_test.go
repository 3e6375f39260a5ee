package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntern_MarshalJSON_DateOnly(t *testing.T) {
	tutor := int64(20)
	in := &Intern{
		ID:        1,
		UserID:    10,
		TutorID:   &tutor,
		Company:   "Acme",
		Position:  "Backend",
		StartDate: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC),
		Status:    InternStatusActive,
		CreatedAt: time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "2025-02-03", got["startDate"])
	assert.Equal(t, "2025-07-31", got["endDate"])
	assert.Equal(t, "2025-01-10T09:30:00Z", got["createdAt"])
	assert.Equal(t, "Acme", got["company"])
	assert.Equal(t, float64(20), got["tutorId"])
	assert.NotContains(t, got, "firstName")
}
