package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

const oidcStateCookie = "oidc_state"

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	cookies     CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, cookies CookieConfig, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

func (c *AuthController) setSession(ctx *gin.Context, resp *dto.AuthResponse) {
	setCookie(ctx, middleware.SessionCookie, resp.Token.AccessToken, c.cookies.AccessTTL, c.cookies.Secure)
	if resp.Token.RefreshToken != "" {
		setCookie(ctx, middleware.RefreshCookie, resp.Token.RefreshToken, c.cookies.RefreshTTL, c.cookies.Secure)
	}
}

func (c *AuthController) clearSession(ctx *gin.Context) {
	clearCookie(ctx, middleware.SessionCookie, c.cookies.Secure)
	clearCookie(ctx, middleware.RefreshCookie, c.cookies.Secure)
}

// Register handles self-service sign-up
// @Summary Register a new account
// @Description Creates an intern account for the built-in provider and signs it in. Disabled unless auth.allow_registration is set.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Account created"
// @Failure 400 {object} dto.APIResponse "Invalid request format or weak password"
// @Failure 403 {object} dto.APIResponse "Registration is disabled"
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSession(ctx, resp)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Login handles user login
// @Summary User login
// @Description Authenticates with email and password, sets the session cookies and returns the tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Account disabled"
// @Failure 429 {object} dto.APIResponse "Too many login attempts"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSession(ctx, resp)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// refreshTokenFrom reads the refresh token from the body, falling back to the cookie
func refreshTokenFrom(ctx *gin.Context) string {
	var req dto.RefreshTokenRequest
	if ctx.Request.ContentLength > 0 {
		_ = ctx.ShouldBindJSON(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	token, _ := ctx.Cookie(middleware.RefreshCookie)
	return token
}

// RefreshToken handles token refresh requests
// @Summary Refresh access token
// @Description Rotates a refresh token taken from the body or the refresh_token cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Tokens refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid, expired or revoked refresh token"
// @Failure 403 {object} dto.APIResponse "Account disabled"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	resp, err := c.authService.RefreshToken(ctx.Request.Context(), refreshTokenFrom(ctx))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenNotFound, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked) {
			c.clearSession(ctx)
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSession(ctx, resp)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Logout revokes the refresh token and clears the session cookies
// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Logged out"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.authService.Logout(ctx.Request.Context(), refreshTokenFrom(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.clearSession(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Logged out"}))
}

// Me describes the caller
// @Summary Current caller
// @Description Returns the profile and effective role resolved for the session. fallback is true when no profile exists and the default role was granted.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse}
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.authService.Me(p)))
}

// OIDCLogin starts the single sign-on flow
// @Summary Start single sign-on
// @Tags auth
// @Success 302 "Redirect to the identity provider"
// @Failure 400 {object} dto.APIResponse "Single sign-on is not configured"
// @Router /auth/oidc/login [get]
func (c *AuthController) OIDCLogin(ctx *gin.Context) {
	state := uuid.New().String()
	target, err := c.authService.OIDCLoginURL(state)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	setCookie(ctx, oidcStateCookie, state, oidcStateTTL, c.cookies.Secure)
	ctx.Redirect(http.StatusFound, target)
}

// OIDCCallback completes the single sign-on flow
// @Summary Single sign-on callback
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by the login endpoint"
// @Success 302 "Redirect to the caller's home page"
// @Failure 400 {object} dto.APIResponse "State mismatch or missing code"
// @Failure 401 {object} dto.APIResponse "Token rejected by the provider"
// @Failure 403 {object} dto.APIResponse "Account disabled"
// @Router /auth/oidc/callback [get]
func (c *AuthController) OIDCCallback(ctx *gin.Context) {
	expected, _ := ctx.Cookie(oidcStateCookie)
	clearCookie(ctx, oidcStateCookie, c.cookies.Secure)
	if expected == "" || ctx.Query("state") != expected {
		c.logger.Warn().Str("ip", ctx.ClientIP()).Msg("OIDC callback with mismatched state")
		badRequest(ctx, "Invalid sign-on state")
		return
	}
	code := ctx.Query("code")
	if code == "" {
		badRequest(ctx, "Missing authorization code")
		return
	}

	resp, err := c.authService.OIDCCallback(ctx.Request.Context(), code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSession(ctx, resp)
	ctx.Redirect(http.StatusFound, resp.RedirectTo)
}
