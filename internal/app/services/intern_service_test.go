package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

func newInternFixture() (InternService, *fakeInterns) {
	users := newFakeUsers(
		&models.User{ID: 10, Role: models.RoleIntern, IsActive: true},
		&models.User{ID: 11, Role: models.RoleIntern, IsActive: true},
		&models.User{ID: 20, Role: models.RoleTutor, IsActive: true},
	)
	interns := newFakeInterns()
	return NewInternService(interns, users, zerolog.Nop()), interns
}

func TestInternCreate_RoundTripsByUserID(t *testing.T) {
	svc, _ := newInternFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateInternRequest{
		UserID:    10,
		TutorID:   int64Ptr(20),
		Company:   "Acme",
		Position:  "Backend intern",
		StartDate: "2025-02-03",
		EndDate:   "2025-07-31",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InternStatusActive, created.Status)

	got, err := svc.GetByUserID(ctx, hrPrincipal, 10)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "Backend intern", got.Position)
	assert.Equal(t, "2025-02-03", got.StartDate.Format(dto.DateLayout))
	assert.Equal(t, "2025-07-31", got.EndDate.Format(dto.DateLayout))
}

func TestInternCreate_DuplicateUserIsUnclassified(t *testing.T) {
	svc, _ := newInternFixture()
	ctx := context.Background()
	req := &dto.CreateInternRequest{
		UserID: 10, Company: "Acme", Position: "Dev", StartDate: "2025-02-03", EndDate: "2025-07-31",
	}

	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.NotErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestInternCreate_Validation(t *testing.T) {
	svc, _ := newInternFixture()
	ctx := context.Background()

	cases := map[string]*dto.CreateInternRequest{
		"end before start": {UserID: 10, Company: "A", Position: "B", StartDate: "2025-07-31", EndDate: "2025-02-03"},
		"bad date":         {UserID: 10, Company: "A", Position: "B", StartDate: "03/02/2025", EndDate: "2025-07-31"},
		"unknown user":     {UserID: 999, Company: "A", Position: "B", StartDate: "2025-02-03", EndDate: "2025-07-31"},
		"user not intern":  {UserID: 20, Company: "A", Position: "B", StartDate: "2025-02-03", EndDate: "2025-07-31"},
		"tutor is intern":  {UserID: 10, TutorID: int64Ptr(11), Company: "A", Position: "B", StartDate: "2025-02-03", EndDate: "2025-07-31"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestInternVisibility(t *testing.T) {
	svc, _ := newInternFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateInternRequest{
		UserID: 10, TutorID: int64Ptr(20), Company: "Acme", Position: "Dev", StartDate: "2025-02-03", EndDate: "2025-07-31",
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, tutorPrincipal, created.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, internPrincipal, created.ID)
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, otherTutor, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrInternNotFound)
	_, err = svc.GetByID(ctx, &appauth.Principal{UserID: 11, Role: models.RoleIntern}, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrInternNotFound)

	mine, err := svc.GetMine(ctx, internPrincipal)
	require.NoError(t, err)
	assert.Equal(t, created.ID, mine.ID)

	list, err := svc.List(ctx, otherTutor, dto.InternFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
