package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/internhub/internal/pkg/auth"
)

type fakeProfiles struct {
	users map[string]*models.User
	err   error
}

func (f *fakeProfiles) GetByAuthID(_ context.Context, authID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[authID]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func identity(sub string) *pkgauth.Identity {
	return &pkgauth.Identity{Subject: sub, Email: sub + "@example.com", Provider: pkgauth.ProviderLocal}
}

func TestResolvePrincipal_Profile(t *testing.T) {
	profiles := &fakeProfiles{users: map[string]*models.User{
		"t1": {ID: 4, AuthID: "t1", Email: "t1@example.com", Role: models.RoleTutor, IsActive: true},
	}}
	a := NewAuthorizer(profiles, models.RoleIntern, zerolog.Nop())

	p, err := a.ResolvePrincipal(context.Background(), identity("t1"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleTutor, p.Role)
	assert.Equal(t, int64(4), p.UserID)
	assert.False(t, p.Fallback)
	require.NotNil(t, p.Scope().TutorID)
	assert.Equal(t, int64(4), *p.Scope().TutorID)
}

func TestResolvePrincipal_MissingProfileFallsBack(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuthorizer(&fakeProfiles{}, models.RoleIntern, zerolog.New(&buf))

	p, err := a.ResolvePrincipal(context.Background(), identity("orphan"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleIntern, p.Role)
	assert.True(t, p.Fallback)
	assert.Zero(t, p.UserID)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "orphan")
}

func TestResolvePrincipal_MissingProfileDenied(t *testing.T) {
	a := NewAuthorizer(&fakeProfiles{}, "", zerolog.Nop())

	_, err := a.ResolvePrincipal(context.Background(), identity("orphan"))
	assert.ErrorIs(t, err, apperrors.ErrProfileMissing)
}

func TestResolvePrincipal_LookupErrorFailsClosed(t *testing.T) {
	a := NewAuthorizer(&fakeProfiles{err: errors.New("connection refused")}, models.RoleIntern, zerolog.Nop())

	p, err := a.ResolvePrincipal(context.Background(), identity("x"))
	assert.Nil(t, p)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestResolvePrincipal_Inactive(t *testing.T) {
	profiles := &fakeProfiles{users: map[string]*models.User{
		"off": {ID: 2, AuthID: "off", Role: models.RoleHR, IsActive: false},
	}}
	a := NewAuthorizer(profiles, models.RoleIntern, zerolog.Nop())

	_, err := a.ResolvePrincipal(context.Background(), identity("off"))
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestPrincipal_CanSeeIntern(t *testing.T) {
	tutor := int64(7)
	intern := &models.Intern{ID: 1, UserID: 20, TutorID: &tutor}

	assert.True(t, (&Principal{UserID: 1, Role: models.RoleHR}).CanSeeIntern(intern))
	assert.True(t, (&Principal{UserID: 7, Role: models.RoleTutor}).CanSeeIntern(intern))
	assert.False(t, (&Principal{UserID: 8, Role: models.RoleTutor}).CanSeeIntern(intern))
	assert.True(t, (&Principal{UserID: 20, Role: models.RoleIntern}).CanSeeIntern(intern))
	assert.False(t, (&Principal{UserID: 21, Role: models.RoleIntern}).CanSeeIntern(intern))
	assert.False(t, (&Principal{Role: models.RoleIntern, Fallback: true}).CanSeeIntern(intern))
}

func TestPrincipalContext(t *testing.T) {
	_, err := MustPrincipal(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	ctx := WithPrincipal(context.Background(), &Principal{Role: models.RoleAdmin})
	p, err := MustPrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
}
