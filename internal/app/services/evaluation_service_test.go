package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

type fakeEvaluations struct {
	mu   sync.Mutex
	byID map[int64]*models.Evaluation
	next int64
}

func (f *fakeEvaluations) Create(_ context.Context, e *models.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byID == nil {
		f.byID = map[int64]*models.Evaluation{}
	}
	f.next++
	e.ID = f.next
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEvaluations) GetByID(_ context.Context, id int64) (*models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrEvaluationNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvaluations) List(_ context.Context, _ repositories.EvaluationListParams, _, _ uint64) ([]*models.Evaluation, int64, error) {
	return nil, 0, nil
}

func (f *fakeEvaluations) Update(_ context.Context, e *models.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEvaluations) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeEvaluations) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func TestEvaluationCreate_ScoresAndNotifies(t *testing.T) {
	interns := newFakeInterns(&models.Intern{ID: 1, UserID: 10, TutorID: int64Ptr(20)})
	notifications := &fakeNotifications{}
	notifier := NewNotificationService(notifications, newFakeUsers(), NotificationOptions{}, zerolog.Nop())
	svc := NewEvaluationService(&fakeEvaluations{}, interns, notifier, zerolog.Nop())
	ctx := context.Background()

	e, err := svc.Create(ctx, tutorPrincipal, &dto.CreateEvaluationRequest{
		InternID: 1,
		Period:   "mid-term",
		Criteria: map[string]float64{"autonomy": 14, "quality": 15, "teamwork": 16.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.17, e.OverallScore)
	assert.Equal(t, int64(20), e.EvaluatorID)

	sent := notifications.forUser(10)
	require.Len(t, sent, 1)
	assert.Equal(t, "New evaluation", sent[0].Title)
	assert.Contains(t, sent[0].Message, "15.17/20")

	updated, err := svc.Update(ctx, hrPrincipal, e.ID, &dto.UpdateEvaluationRequest{
		Criteria: map[string]float64{"autonomy": 20, "quality": 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.OverallScore)

	_, err = svc.Create(ctx, otherTutor, &dto.CreateEvaluationRequest{
		InternID: 1, Period: "final", Criteria: map[string]float64{"x": 10},
	})
	assert.ErrorIs(t, err, apperrors.ErrInternNotFound)

	_, err = svc.Create(ctx, tutorPrincipal, &dto.CreateEvaluationRequest{
		InternID: 1, Period: "final", Criteria: map[string]float64{"x": 25},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
