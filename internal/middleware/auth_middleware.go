package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/metrics"
)

// Context keys set for authenticated requests
const (
	ContextKeyPrincipal = "principal"
	ContextKeyUserID    = "userID"
)

// Gate outcomes reported to metrics
const (
	outcomeAllowed         = "allowed"
	outcomeUnauthenticated = "unauthenticated"
	outcomeDisabled        = "disabled"
	outcomeNoProfile       = "no_profile"
	outcomeRedirected      = "redirected"
	outcomeError           = "error"
)

// PrincipalResolver turns a verified identity into a principal
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id *pkgauth.Identity) (*appauth.Principal, error)
}

// AccessGate is the request level gate in front of every protected route
type AccessGate struct {
	resolver PrincipalResolver
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewAccessGate creates an AccessGate. metrics may be nil.
func NewAccessGate(resolver PrincipalResolver, m *metrics.Metrics, logger zerolog.Logger) *AccessGate {
	return &AccessGate{resolver: resolver, metrics: m, logger: logger}
}

// Handle lets public paths through, sends anonymous callers to the login page
// or answers 401, resolves the caller's role once and keeps page areas to the
// roles allowed by the shared policy.
func (g *AccessGate) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if appauth.IsPublicPath(path) {
			c.Next()
			return
		}
		api := appauth.IsAPIPath(path)

		identity, ok := IdentityFrom(c)
		if !ok {
			g.metrics.AccessDecision(outcomeUnauthenticated)
			if api {
				message := "Authentication required"
				if errors.Is(sessionError(c), pkgauth.ErrExpiredToken) {
					message = "Token expired"
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(message, nil))
				return
			}
			redirect(c, appauth.LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			return
		}

		principal, err := g.resolver.ResolvePrincipal(c.Request.Context(), identity)
		if err != nil {
			g.reject(c, api, err)
			return
		}

		if area, ok := appauth.AreaForPath(path); ok && !principal.Can(area, appauth.ActionView) {
			g.metrics.AccessDecision(outcomeRedirected)
			g.logger.Debug().Str("path", path).Str("role", string(principal.Role)).Msg("Area not allowed, redirecting home")
			redirect(c, appauth.HomePath(principal.Role))
			return
		}

		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Request = c.Request.WithContext(appauth.WithPrincipal(c.Request.Context(), principal))
		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyUserID, principal.UserID)

		g.metrics.AccessDecision(outcomeAllowed)
		c.Next()
	}
}

func (g *AccessGate) reject(c *gin.Context, api bool, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccountDisabled):
		g.metrics.AccessDecision(outcomeDisabled)
		if api {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse("Account is disabled", nil))
			return
		}
		redirect(c, appauth.LoginPath+"?disabled=1")
	case errors.Is(err, apperrors.ErrProfileMissing):
		g.metrics.AccessDecision(outcomeNoProfile)
		if api {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse("No profile is linked to this identity", nil))
			return
		}
		c.AbortWithStatus(http.StatusForbidden)
	default:
		g.metrics.AccessDecision(outcomeError)
		g.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to resolve principal")
		if api {
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", nil))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// Require checks the shared policy for one API route
func Require(resource appauth.Resource, action appauth.Action) gin.HandlerFunc {
	perm := appauth.Permission{Resource: resource, Action: action}
	return func(c *gin.Context) {
		principal, ok := appauth.PrincipalFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Authentication required", nil))
			return
		}
		if !principal.Can(resource, action) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse("Permission denied", map[string]string{"required": perm.String()}))
			return
		}
		c.Next()
	}
}

// PrincipalUserID returns the profile id of the caller, 0 when there is none
func PrincipalUserID(c *gin.Context) int64 {
	if p, ok := appauth.PrincipalFrom(c.Request.Context()); ok {
		return p.UserID
	}
	return 0
}
