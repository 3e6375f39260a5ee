package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/ratelimit"
)

type fakeVerifier map[string]*pkgauth.Identity

func (f fakeVerifier) Verify(_ context.Context, token string) (*pkgauth.Identity, error) {
	if token == "expired" {
		return nil, pkgauth.ErrExpiredToken
	}
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, pkgauth.ErrInvalidToken
}

type fakeProfiles struct {
	users map[string]*models.User
	err   error
}

func (f fakeProfiles) GetByAuthID(_ context.Context, authID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[authID]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

var testVerifier = fakeVerifier{
	"tok-admin":  {Subject: "a-admin", Provider: pkgauth.ProviderLocal},
	"tok-hr":     {Subject: "a-hr", Provider: pkgauth.ProviderLocal},
	"tok-tutor":  {Subject: "a-tutor", Provider: pkgauth.ProviderLocal},
	"tok-intern": {Subject: "a-intern", Provider: pkgauth.ProviderLocal},
	"tok-off":    {Subject: "a-off", Provider: pkgauth.ProviderLocal},
	"tok-orphan": {Subject: "a-orphan", Provider: pkgauth.ProviderOIDC},
}

func testUsers() map[string]*models.User {
	return map[string]*models.User{
		"a-admin":  {ID: 1, AuthID: "a-admin", Role: models.RoleAdmin, IsActive: true},
		"a-hr":     {ID: 2, AuthID: "a-hr", Role: models.RoleHR, IsActive: true},
		"a-tutor":  {ID: 3, AuthID: "a-tutor", Role: models.RoleTutor, IsActive: true},
		"a-intern": {ID: 4, AuthID: "a-intern", Role: models.RoleIntern, IsActive: true},
		"a-off":    {ID: 5, AuthID: "a-off", Role: models.RoleHR, IsActive: false},
	}
}

func newTestRouter(profiles appauth.ProfileLookup, fallback models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authz := appauth.NewAuthorizer(profiles, fallback, zerolog.Nop())
	r.Use(
		NewSessionMiddleware(testVerifier, zerolog.Nop()).Resolve(),
		NewAccessGate(authz, nil, zerolog.Nop()).Handle(),
	)

	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(PrincipalUserID(c)))
	}
	r.GET("/admin", ok)
	r.GET("/rh", ok)
	r.GET("/tuteur", ok)
	r.GET("/stagiaire", ok)
	r.GET("/api/users", Require(appauth.ResourceUser, appauth.ActionList), ok)
	r.POST("/api/auth/login", ok)
	return r
}

func do(r http.Handler, method, path, token string, useCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		if useCookie {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAccessGate_UnauthenticatedPageRedirectsToLogin(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	w := do(r, http.MethodGet, "/admin", "", false)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fadmin", w.Header().Get("Location"))
}

func TestAccessGate_TutorOnAdminAreaGoesHome(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	w := do(r, http.MethodGet, "/admin", "tok-tutor", true)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/tuteur", w.Header().Get("Location"))
}

func TestAccessGate_NonAdminsNeverReachAdminArea(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	for token, home := range map[string]string{
		"tok-hr":     "/rh",
		"tok-tutor":  "/tuteur",
		"tok-intern": "/stagiaire",
		"tok-orphan": "/stagiaire",
	} {
		for _, path := range []string{"/admin", "/admin/users", "/admin?tab=1"} {
			w := do(r, http.MethodGet, path, token, true)
			assert.Equal(t, http.StatusFound, w.Code, "%s %s", token, path)
			assert.Equal(t, home, w.Header().Get("Location"), "%s %s", token, path)
		}
	}
}

func TestAccessGate_AllowedPageSetsSecurityHeaders(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	w := do(r, http.MethodGet, "/admin", "tok-admin", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.EqualValues(t, 1, decode(t, w).Data)
}

func TestAccessGate_API(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	tests := []struct {
		name    string
		token   string
		status  int
		message string
	}{
		{name: "no session", status: http.StatusUnauthorized, message: "Authentication required"},
		{name: "garbage token", token: "nope", status: http.StatusUnauthorized, message: "Authentication required"},
		{name: "expired token", token: "expired", status: http.StatusUnauthorized, message: "Token expired"},
		{name: "intern lacks permission", token: "tok-intern", status: http.StatusForbidden, message: "Permission denied"},
		{name: "tutor lacks permission", token: "tok-tutor", status: http.StatusForbidden, message: "Permission denied"},
		{name: "disabled account", token: "tok-off", status: http.StatusForbidden, message: "Account is disabled"},
		{name: "hr allowed", token: "tok-hr", status: http.StatusOK},
		{name: "admin allowed", token: "tok-admin", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/users", tt.token, false)
			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.status == http.StatusOK, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestAccessGate_PublicPathNeedsNoSession(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	w := do(r, http.MethodPost, "/api/auth/login", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Frame-Options"))
}

func TestAccessGate_DisabledPageRedirect(t *testing.T) {
	r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

	w := do(r, http.MethodGet, "/rh", "tok-off", true)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?disabled=1", w.Header().Get("Location"))
}

func TestAccessGate_MissingProfileFallback(t *testing.T) {
	t.Run("fallback role grants intern level access", func(t *testing.T) {
		r := newTestRouter(fakeProfiles{users: testUsers()}, models.RoleIntern)

		w := do(r, http.MethodGet, "/stagiaire", "tok-orphan", true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 0, decode(t, w).Data)

		w = do(r, http.MethodGet, "/api/users", "tok-orphan", false)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("empty fallback denies", func(t *testing.T) {
		r := newTestRouter(fakeProfiles{users: testUsers()}, "")

		w := do(r, http.MethodGet, "/api/users", "tok-orphan", false)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "No profile is linked to this identity", decode(t, w).Error)

		w = do(r, http.MethodGet, "/stagiaire", "tok-orphan", true)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAccessGate_LookupFailureFailsClosed(t *testing.T) {
	r := newTestRouter(fakeProfiles{err: errors.New("connection refused")}, models.RoleIntern)

	w := do(r, http.MethodGet, "/api/users", "tok-admin", false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Error)

	w = do(r, http.MethodGet, "/stagiaire", "tok-intern", true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequire_WithoutPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", Require(appauth.ResourceStats, appauth.ActionRead), func(c *gin.Context) {
		t.Fatal("handler should not run")
	})

	w := do(r, http.MethodGet, "/x", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	duplicateIntern := fmt.Errorf("failed to create intern: %w",
		&pgconn.PgError{Code: "23505", ConstraintName: "interns_user_id_key"})

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "entity not found", err: fmt.Errorf("loading: %w", apperrors.ErrInternNotFound), status: http.StatusNotFound, message: "Intern not found"},
		{name: "custom not found", err: apperrors.NewResourceNotFoundError("No default template"), status: http.StatusNotFound, message: "No default template"},
		{name: "forbidden", err: apperrors.NewForbiddenError("Not your request"), status: http.StatusForbidden, message: "Not your request"},
		{name: "disabled", err: apperrors.ErrAccountDisabled, status: http.StatusForbidden, message: "Account is disabled"},
		{name: "credentials", err: apperrors.ErrInvalidCredentials, status: http.StatusUnauthorized, message: "Invalid credentials"},
		{name: "expired", err: pkgauth.ErrExpiredToken, status: http.StatusUnauthorized, message: "Token expired"},
		{name: "revoked", err: apperrors.ErrTokenRevoked, status: http.StatusUnauthorized, message: "Invalid token"},
		{name: "validation", err: apperrors.NewValidationError("endDate must not precede startDate"), status: http.StatusBadRequest, message: "endDate must not precede startDate"},
		{name: "email taken", err: apperrors.ErrEmailAlreadyExists, status: http.StatusConflict, message: "Email already exists"},
		{name: "duplicate intern is unclassified", err: duplicateIntern, status: http.StatusInternalServerError, message: "Internal server error"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/interns", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestHandleAPIError_Details(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/requests", nil)

	err := apperrors.NewCustomError(apperrors.ErrValidationFailed, "Invalid status").
		WithDetails(map[string]interface{}{"status": "unknown value"})
	HandleAPIError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "unknown value"}, decode(t, w).Details)
}

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.POST("/api/auth/login", LoginRateLimit(ratelimit.NewLimiter(client, 2, time.Minute, "test"), zerolog.Nop()),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPost, "/api/auth/login", "", false)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(r, http.MethodPost, "/api/auth/login", "", false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	mr.Close()
	w = do(r, http.MethodPost, "/api/auth/login", "", false)
	assert.Equal(t, http.StatusOK, w.Code, "limiter fails open")
}

func TestBindHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParseIDParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(id))
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/items/12", "", false).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/items/abc", "", false).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/items/-3", "", false).Code)
}
