package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	pkgauth "github.com/yigit/internhub/internal/pkg/auth"
)

// Cookie names shared with the auth controller
const (
	SessionCookie = "session"
	RefreshCookie = "refresh_token"
)

const (
	identityKey     = "identity"
	sessionErrorKey = "sessionError"
)

// SessionMiddleware turns the session token of a request into an identity
type SessionMiddleware struct {
	verifier pkgauth.IdentityVerifier
	logger   zerolog.Logger
}

// NewSessionMiddleware creates a SessionMiddleware
func NewSessionMiddleware(verifier pkgauth.IdentityVerifier, logger zerolog.Logger) *SessionMiddleware {
	return &SessionMiddleware{verifier: verifier, logger: logger}
}

// Resolve verifies the bearer token or session cookie when one is present.
// It never rejects a request; the access gate decides what an anonymous
// caller may reach.
func (m *SessionMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token != "" {
			identity, err := m.verifier.Verify(c.Request.Context(), token)
			if err != nil {
				m.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Session token rejected")
				c.Set(sessionErrorKey, err)
			} else {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// sessionToken prefers the Authorization header over the cookie
func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, err := pkgauth.ExtractBearerToken(header); err == nil {
			return token
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// IdentityFrom returns the identity placed by Resolve
func IdentityFrom(c *gin.Context) (*pkgauth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*pkgauth.Identity)
	return id, ok && id != nil
}

func sessionError(c *gin.Context) error {
	if v, ok := c.Get(sessionErrorKey); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}
