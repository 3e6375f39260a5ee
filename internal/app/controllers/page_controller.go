package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/middleware"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// PageServices groups what the server-rendered pages read from
type PageServices struct {
	Auth          services.AuthService
	Interns       services.InternService
	Notifications services.NotificationService
	Stats         services.StatsService
}

// PageController renders the login page and the role dashboards
type PageController struct {
	svc     PageServices
	cookies CookieConfig
	logger  zerolog.Logger
}

// NewPageController creates a new PageController
func NewPageController(svc PageServices, cookies CookieConfig, logger zerolog.Logger) *PageController {
	return &PageController{svc: svc, cookies: cookies, logger: logger}
}

type pageData struct {
	Title       string
	Role        models.Role
	DisplayName string
	Fallback    bool
	UnreadCount int64
	Stats       *dto.StatsResponse
	Interns     []*models.Intern
	Intern      *models.Intern

	Email       string
	Next        string
	Error       string
	Disabled    bool
	OIDCEnabled bool
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// safeNext keeps post-login redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

// LoginPage shows the sign-in form
func (c *PageController) LoginPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", pageData{
		Title:       "Sign in",
		Next:        safeNext(ctx.Query("next")),
		Disabled:    ctx.Query("disabled") != "",
		OIDCEnabled: c.svc.Auth.OIDCEnabled(),
	})
}

// LoginSubmit signs in from the HTML form and redirects to the role's home
func (c *PageController) LoginSubmit(ctx *gin.Context) {
	data := pageData{Title: "Sign in", OIDCEnabled: c.svc.Auth.OIDCEnabled()}

	var form loginForm
	if err := ctx.ShouldBind(&form); err != nil {
		data.Email = ctx.PostForm("email")
		data.Next = safeNext(ctx.PostForm("next"))
		data.Error = "Enter a valid email and password."
		ctx.HTML(http.StatusBadRequest, "login.html", data)
		return
	}
	data.Email = form.Email
	data.Next = safeNext(form.Next)

	resp, err := c.svc.Auth.Login(ctx.Request.Context(), &dto.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		status := http.StatusInternalServerError
		data.Error = "Sign in failed, try again later."
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			status, data.Error = http.StatusUnauthorized, "Invalid email or password."
		case errors.Is(err, apperrors.ErrAccountDisabled):
			status, data.Error = http.StatusForbidden, "This account is disabled."
		default:
			c.logger.Error().Err(err).Msg("Page login failed")
		}
		ctx.HTML(status, "login.html", data)
		return
	}

	setCookie(ctx, middleware.SessionCookie, resp.Token.AccessToken, c.cookies.AccessTTL, c.cookies.Secure)
	setCookie(ctx, middleware.RefreshCookie, resp.Token.RefreshToken, c.cookies.RefreshTTL, c.cookies.Secure)

	target := resp.RedirectTo
	if data.Next != "" {
		target = data.Next
	}
	ctx.Redirect(http.StatusFound, target)
}

// Logout revokes the refresh cookie and returns to the sign-in page
func (c *PageController) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(middleware.RefreshCookie); err == nil {
		if err := c.svc.Auth.Logout(ctx.Request.Context(), token); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to revoke refresh token on logout")
		}
	}
	clearCookie(ctx, middleware.SessionCookie, c.cookies.Secure)
	clearCookie(ctx, middleware.RefreshCookie, c.cookies.Secure)
	ctx.Redirect(http.StatusFound, appauth.LoginPath)
}

// Home sends the caller to the dashboard of their role
func (c *PageController) Home(ctx *gin.Context) {
	p, ok := appauth.PrincipalFrom(ctx.Request.Context())
	if !ok {
		ctx.Redirect(http.StatusFound, appauth.LoginPath)
		return
	}
	ctx.Redirect(http.StatusFound, appauth.HomePath(p.Role))
}

// AdminDashboard renders /admin
func (c *PageController) AdminDashboard(ctx *gin.Context) {
	c.dashboard(ctx, "Administration", c.withStats)
}

// HRDashboard renders /rh
func (c *PageController) HRDashboard(ctx *gin.Context) {
	c.dashboard(ctx, "Human resources", c.withStats)
}

// TutorDashboard renders /tuteur
func (c *PageController) TutorDashboard(ctx *gin.Context) {
	c.dashboard(ctx, "Tutor", c.withInterns)
}

// InternDashboard renders /stagiaire
func (c *PageController) InternDashboard(ctx *gin.Context) {
	c.dashboard(ctx, "My internship", c.withOwnIntern)
}

type pageLoader func(ctx *gin.Context, p *appauth.Principal, data *pageData) error

func (c *PageController) dashboard(ctx *gin.Context, title string, load pageLoader) {
	p, err := appauth.MustPrincipal(ctx.Request.Context())
	if err != nil {
		ctx.Redirect(http.StatusFound, appauth.LoginPath)
		return
	}

	data := pageData{
		Title:       title,
		Role:        p.Role,
		DisplayName: displayName(p),
		Fallback:    p.Fallback,
	}
	if n, err := c.svc.Notifications.UnreadCount(ctx.Request.Context(), p); err == nil {
		data.UnreadCount = n
	}
	if err := load(ctx, p, &data); err != nil {
		c.logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Failed to load dashboard")
		ctx.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	ctx.HTML(http.StatusOK, "dashboard.html", data)
}

func (c *PageController) withStats(ctx *gin.Context, _ *appauth.Principal, data *pageData) error {
	stats, err := c.svc.Stats.Get(ctx.Request.Context())
	if err != nil {
		return err
	}
	data.Stats = stats
	return nil
}

func (c *PageController) withInterns(ctx *gin.Context, p *appauth.Principal, data *pageData) error {
	list, err := c.svc.Interns.List(ctx.Request.Context(), p, dto.InternFilter{Status: string(models.InternStatusActive)})
	if err != nil {
		return err
	}
	data.Interns = list.Items
	return nil
}

func (c *PageController) withOwnIntern(ctx *gin.Context, p *appauth.Principal, data *pageData) error {
	intern, err := c.svc.Interns.GetMine(ctx.Request.Context(), p)
	if err != nil {
		if errors.Is(err, apperrors.ErrInternNotFound) {
			return nil
		}
		return err
	}
	data.Intern = intern
	return nil
}

func displayName(p *appauth.Principal) string {
	if p.User != nil {
		if name := strings.TrimSpace(p.User.FirstName + " " + p.User.LastName); name != "" {
			return name
		}
	}
	return p.Email
}
