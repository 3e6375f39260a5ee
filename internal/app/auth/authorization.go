package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/internhub/internal/pkg/auth"
)

// Principal is the caller as resolved once per request
type Principal struct {
	UserID int64
	AuthID string
	Email  string
	Role   models.Role
	// Fallback is set when no users row exists and the configured default
	// role was granted
	Fallback bool
	User     *models.User
}

// Can checks the shared permission table for this principal
func (p *Principal) Can(resource Resource, action Action) bool {
	return p != nil && IsAllowed(p.Role, resource, action)
}

// IsStaff reports admin or hr, the roles that see every row
func (p *Principal) IsStaff() bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleHR
}

// Scope returns the row restriction for list queries
func (p *Principal) Scope() repositories.Scope {
	id := p.UserID
	switch p.Role {
	case models.RoleTutor:
		return repositories.Scope{TutorID: &id}
	case models.RoleIntern:
		return repositories.Scope{InternUserID: &id}
	}
	return repositories.Scope{}
}

// CanSeeIntern reports whether the principal may see rows of this intern
func (p *Principal) CanSeeIntern(intern *models.Intern) bool {
	switch p.Role {
	case models.RoleAdmin, models.RoleHR:
		return true
	case models.RoleTutor:
		return intern.TutorID != nil && *intern.TutorID == p.UserID
	case models.RoleIntern:
		return p.UserID != 0 && intern.UserID == p.UserID
	}
	return false
}

type principalKey struct{}

// WithPrincipal stores the principal on ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored on ctx
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// MustPrincipal returns the principal or ErrNotAuthenticated
func MustPrincipal(ctx context.Context) (*Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	return p, nil
}

// ProfileLookup finds the users row linked to an identity
type ProfileLookup interface {
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
}

// Authorizer resolves identities into principals
type Authorizer struct {
	profiles     ProfileLookup
	fallbackRole models.Role
	log          zerolog.Logger
}

// NewAuthorizer creates an Authorizer. An empty fallbackRole denies
// identities that have no profile.
func NewAuthorizer(profiles ProfileLookup, fallbackRole models.Role, log zerolog.Logger) *Authorizer {
	return &Authorizer{profiles: profiles, fallbackRole: fallbackRole, log: log}
}

// ResolvePrincipal looks up the profile of a verified identity. Lookup
// failures are returned as errors and never downgraded to a fallback role.
func (a *Authorizer) ResolvePrincipal(ctx context.Context, id *pkgauth.Identity) (*Principal, error) {
	if id == nil || id.Subject == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	user, err := a.profiles.GetByAuthID(ctx, id.Subject)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		if a.fallbackRole == "" {
			a.log.Warn().Str("subject", id.Subject).Str("provider", id.Provider).
				Msg("Identity has no profile, access denied")
			return nil, apperrors.ErrProfileMissing
		}
		a.log.Warn().Str("subject", id.Subject).Str("provider", id.Provider).
			Str("role", string(a.fallbackRole)).
			Msg("Identity has no profile, granting fallback role")
		return &Principal{
			AuthID:   id.Subject,
			Email:    id.Email,
			Role:     a.fallbackRole,
			Fallback: true,
		}, nil
	case err != nil:
		return nil, fmt.Errorf("resolving profile for %s: %w", id.Subject, err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if !user.Role.Valid() {
		return nil, fmt.Errorf("user %d has unknown role %q", user.ID, user.Role)
	}

	return &Principal{
		UserID: user.ID,
		AuthID: user.AuthID,
		Email:  user.Email,
		Role:   user.Role,
		User:   user,
	}, nil
}
