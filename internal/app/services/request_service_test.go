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

type requestFixture struct {
	svc           RequestService
	requests      *fakeRequests
	notifications *fakeNotifications
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func newRequestFixture() *requestFixture {
	interns := newFakeInterns(&models.Intern{
		ID: 1, UserID: 10, TutorID: int64Ptr(20), FirstName: "Ada", LastName: "Lovelace",
		Company: "Acme", Status: models.InternStatusActive,
	})
	requests := newFakeRequests(&models.Request{
		ID: 5, InternID: 1, TutorID: int64Ptr(20), Type: models.RequestTypeLeave,
		Title: "Leave in May", Status: models.RequestStatusPending,
	})
	notifications := &fakeNotifications{}
	notifier := NewNotificationService(notifications, newFakeUsers(), NotificationOptions{}, zerolog.Nop())

	return &requestFixture{
		svc:           NewRequestService(requests, interns, notifier, zerolog.Nop()),
		requests:      requests,
		notifications: notifications,
	}
}

var (
	hrPrincipal     = &appauth.Principal{UserID: 2, Role: models.RoleHR}
	tutorPrincipal  = &appauth.Principal{UserID: 20, Role: models.RoleTutor}
	otherTutor      = &appauth.Principal{UserID: 21, Role: models.RoleTutor}
	internPrincipal = &appauth.Principal{UserID: 10, Role: models.RoleIntern}
)

func TestRequestUpdateStatus_NotifiesIntern(t *testing.T) {
	f := newRequestFixture()

	got, err := f.svc.UpdateStatus(context.Background(), hrPrincipal, 5, &dto.UpdateRequestStatusRequest{
		Status:   "approved",
		Response: strPtr("  Enjoy your break  "),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, got.Status)
	require.NotNil(t, got.RespondedBy)
	assert.Equal(t, int64(2), *got.RespondedBy)

	sent := f.notifications.forUser(10)
	require.Len(t, sent, 1)
	assert.Equal(t, "Request approved", sent[0].Title)
	assert.Equal(t, `Your request "Leave in May" is now approved. Response: Enjoy your break`, sent[0].Message)
}

func TestRequestUpdateStatus_LabelsEveryStatus(t *testing.T) {
	cases := map[string]string{
		"pending":     "Request pending",
		"rejected":    "Request rejected",
		"in_progress": "Request in progress",
		"done":        "Request completed",
	}
	for status, title := range cases {
		t.Run(status, func(t *testing.T) {
			f := newRequestFixture()
			_, err := f.svc.UpdateStatus(context.Background(), tutorPrincipal, 5, &dto.UpdateRequestStatusRequest{Status: status})
			require.NoError(t, err)

			sent := f.notifications.forUser(10)
			require.Len(t, sent, 1)
			assert.Equal(t, title, sent[0].Title)
			assert.NotContains(t, sent[0].Message, "Response:")
		})
	}
}

func TestRequestUpdateStatus_TutorOutsideScope(t *testing.T) {
	f := newRequestFixture()

	_, err := f.svc.UpdateStatus(context.Background(), otherTutor, 5, &dto.UpdateRequestStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	assert.Empty(t, f.notifications.forUser(10))
}

func TestRequestUpdateStatus_NotificationFailureIsNotFatal(t *testing.T) {
	f := newRequestFixture()
	f.notifications.failFor = map[int64]bool{10: true}

	got, err := f.svc.UpdateStatus(context.Background(), hrPrincipal, 5, &dto.UpdateRequestStatusRequest{Status: "done"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDone, got.Status)
}

func TestRequestCreate_InternFilesForSelfAndTutorIsNotified(t *testing.T) {
	f := newRequestFixture()

	got, err := f.svc.Create(context.Background(), internPrincipal, &dto.CreateRequestRequest{
		Type:  "equipment",
		Title: " Laptop ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.InternID)
	assert.Equal(t, "Laptop", got.Title)
	assert.Equal(t, models.RequestStatusPending, got.Status)
	require.NotNil(t, got.TutorID)
	assert.Equal(t, int64(20), *got.TutorID)

	sent := f.notifications.forUser(20)
	require.Len(t, sent, 1)
	assert.Equal(t, "New request", sent[0].Title)
	assert.Contains(t, sent[0].Message, "Ada Lovelace")
}

func TestRequestCreate_InternCannotFileForOthers(t *testing.T) {
	f := newRequestFixture()

	_, err := f.svc.Create(context.Background(), internPrincipal, &dto.CreateRequestRequest{
		InternID: int64Ptr(99), Type: "other", Title: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRequestCreate_StaffMustNameIntern(t *testing.T) {
	f := newRequestFixture()

	_, err := f.svc.Create(context.Background(), hrPrincipal, &dto.CreateRequestRequest{Type: "other", Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRequestUpdate_InternOnlyWhilePending(t *testing.T) {
	f := newRequestFixture()

	_, err := f.svc.Update(context.Background(), internPrincipal, 5, &dto.UpdateRequestRequest{Title: strPtr("Leave in June")})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), hrPrincipal, 5, &dto.UpdateRequestStatusRequest{Status: "approved"})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), internPrincipal, 5, &dto.UpdateRequestRequest{Title: strPtr("Leave in July")})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	stored, err := f.requests.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Leave in June", stored.Title)
}

func TestRequestGetByID_Scoping(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	for _, p := range []*appauth.Principal{hrPrincipal, tutorPrincipal, internPrincipal} {
		_, err := f.svc.GetByID(ctx, p, 5)
		assert.NoError(t, err, string(p.Role))
	}

	_, err := f.svc.GetByID(ctx, otherTutor, 5)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)

	_, err = f.svc.GetByID(ctx, &appauth.Principal{UserID: 0, Role: models.RoleIntern, Fallback: true}, 5)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}
