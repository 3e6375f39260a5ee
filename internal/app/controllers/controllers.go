// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

const oidcStateTTL = 10 * time.Minute

// CookieConfig controls the session cookies written by the auth endpoints
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// principal returns the caller placed on the request context by the access
// gate. It answers 401 when there is none.
func principal(ctx *gin.Context) (*appauth.Principal, bool) {
	p, err := appauth.MustPrincipal(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return p, true
}

func setCookie(ctx *gin.Context, name, value string, ttl time.Duration, secure bool) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(ctx *gin.Context, name string, secure bool) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func badRequest(ctx *gin.Context, message string) {
	middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(message))
}
