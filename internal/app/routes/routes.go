package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/controllers"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/middleware"
)

// Controllers groups every handler mounted by SetupRouter
type Controllers struct {
	Auth           *controllers.AuthController
	User           *controllers.UserController
	Intern         *controllers.InternController
	Request        *controllers.RequestController
	Document       *controllers.DocumentController
	Evaluation     *controllers.EvaluationController
	Planning       *controllers.PlanningController
	Notification   *controllers.NotificationController
	Template       *controllers.TemplateController
	Admin          *controllers.AdminController
	Page           *controllers.PageController
	NotificationWS gin.HandlerFunc
}

// Ops carries the operational endpoints
type Ops struct {
	Health  func(ctx context.Context) error
	Metrics gin.HandlerFunc
}

// SetupRouter mounts the JSON API under /api, the role pages and the
// operational endpoints. The session and access gate middleware must already
// be installed on router; Require adds the per-route permission check.
func SetupRouter(router *gin.Engine, h Controllers, ops Ops, loginLimit gin.HandlerFunc) {
	api := router.Group("/api")

	// --- Auth ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", loginLimit, h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Me)
		auth.GET("/oidc/login", h.Auth.OIDCLogin)
		auth.GET("/oidc/callback", h.Auth.OIDCCallback)
	}

	// --- Users ---
	users := api.Group("/users")
	{
		users.GET("", middleware.Require(appauth.ResourceUser, appauth.ActionList), h.User.ListUsers)
		users.GET("/:id", middleware.Require(appauth.ResourceUser, appauth.ActionRead), h.User.GetUser)
		users.POST("", middleware.Require(appauth.ResourceUser, appauth.ActionCreate), h.User.CreateUser)
		users.PUT("/:id", middleware.Require(appauth.ResourceUser, appauth.ActionUpdate), h.User.UpdateUser)
		users.PATCH("/:id/status", middleware.Require(appauth.ResourceUser, appauth.ActionUpdate), h.User.UpdateUserStatus)
		users.PATCH("/:id/role", middleware.Require(appauth.ResourceUser, appauth.ActionUpdate), h.User.UpdateUserRole)
		users.DELETE("/:id", middleware.Require(appauth.ResourceUser, appauth.ActionDelete), h.User.DeleteUser)
	}

	// --- Interns ---
	interns := api.Group("/interns")
	{
		interns.GET("", middleware.Require(appauth.ResourceIntern, appauth.ActionList), h.Intern.ListInterns)
		interns.GET("/me", middleware.Require(appauth.ResourceIntern, appauth.ActionRead), h.Intern.GetMyIntern)
		interns.GET("/by-user/:userId", middleware.Require(appauth.ResourceIntern, appauth.ActionRead), h.Intern.GetInternByUser)
		interns.GET("/:id", middleware.Require(appauth.ResourceIntern, appauth.ActionRead), h.Intern.GetIntern)
		interns.POST("", middleware.Require(appauth.ResourceIntern, appauth.ActionCreate), h.Intern.CreateIntern)
		interns.PUT("/:id", middleware.Require(appauth.ResourceIntern, appauth.ActionUpdate), h.Intern.UpdateIntern)
		interns.DELETE("/:id", middleware.Require(appauth.ResourceIntern, appauth.ActionDelete), h.Intern.DeleteIntern)
	}

	// --- Requests ---
	requests := api.Group("/requests")
	{
		requests.GET("", middleware.Require(appauth.ResourceRequest, appauth.ActionList), h.Request.ListRequests)
		requests.GET("/:id", middleware.Require(appauth.ResourceRequest, appauth.ActionRead), h.Request.GetRequest)
		requests.POST("", middleware.Require(appauth.ResourceRequest, appauth.ActionCreate), h.Request.CreateRequest)
		requests.PUT("/:id", middleware.Require(appauth.ResourceRequest, appauth.ActionUpdate), h.Request.UpdateRequest)
		requests.PATCH("/:id/status", middleware.Require(appauth.ResourceRequest, appauth.ActionStatus), h.Request.UpdateRequestStatus)
		requests.DELETE("/:id", middleware.Require(appauth.ResourceRequest, appauth.ActionDelete), h.Request.DeleteRequest)
	}

	// --- Documents ---
	documents := api.Group("/documents")
	{
		documents.GET("", middleware.Require(appauth.ResourceDocument, appauth.ActionList), h.Document.ListDocuments)
		documents.POST("/generate", middleware.Require(appauth.ResourceDocument, appauth.ActionGenerate), h.Document.GenerateDocument)
		documents.GET("/:id", middleware.Require(appauth.ResourceDocument, appauth.ActionRead), h.Document.GetDocument)
		documents.GET("/:id/download", middleware.Require(appauth.ResourceDocument, appauth.ActionRead), h.Document.DownloadDocument)
		documents.POST("", middleware.Require(appauth.ResourceDocument, appauth.ActionCreate), h.Document.UploadDocument)
		documents.PATCH("/:id/visibility", middleware.Require(appauth.ResourceDocument, appauth.ActionUpdate), h.Document.UpdateDocumentVisibility)
		documents.DELETE("/:id", middleware.Require(appauth.ResourceDocument, appauth.ActionDelete), h.Document.DeleteDocument)
	}

	// --- Evaluations ---
	evaluations := api.Group("/evaluations")
	{
		evaluations.GET("", middleware.Require(appauth.ResourceEvaluation, appauth.ActionList), h.Evaluation.ListEvaluations)
		evaluations.GET("/:id", middleware.Require(appauth.ResourceEvaluation, appauth.ActionRead), h.Evaluation.GetEvaluation)
		evaluations.POST("", middleware.Require(appauth.ResourceEvaluation, appauth.ActionCreate), h.Evaluation.CreateEvaluation)
		evaluations.PUT("/:id", middleware.Require(appauth.ResourceEvaluation, appauth.ActionUpdate), h.Evaluation.UpdateEvaluation)
		evaluations.DELETE("/:id", middleware.Require(appauth.ResourceEvaluation, appauth.ActionDelete), h.Evaluation.DeleteEvaluation)
	}

	// --- Planning ---
	planning := api.Group("/planning")
	{
		planning.GET("", middleware.Require(appauth.ResourcePlanning, appauth.ActionList), h.Planning.ListPlanning)
		planning.GET("/:id", middleware.Require(appauth.ResourcePlanning, appauth.ActionRead), h.Planning.GetPlanning)
		planning.POST("", middleware.Require(appauth.ResourcePlanning, appauth.ActionCreate), h.Planning.CreatePlanning)
		planning.PUT("/:id", middleware.Require(appauth.ResourcePlanning, appauth.ActionUpdate), h.Planning.UpdatePlanning)
		planning.DELETE("/:id", middleware.Require(appauth.ResourcePlanning, appauth.ActionDelete), h.Planning.DeletePlanning)
	}

	// --- Notifications ---
	notifications := api.Group("/notifications")
	{
		notifications.GET("", middleware.Require(appauth.ResourceNotification, appauth.ActionList), h.Notification.ListNotifications)
		notifications.GET("/unread-count", middleware.Require(appauth.ResourceNotification, appauth.ActionList), h.Notification.UnreadCount)
		notifications.GET("/ws", middleware.Require(appauth.ResourceNotification, appauth.ActionList), h.NotificationWS)
		notifications.PATCH("/read-all", middleware.Require(appauth.ResourceNotification, appauth.ActionUpdate), h.Notification.MarkAllRead)
		notifications.PATCH("/:id/read", middleware.Require(appauth.ResourceNotification, appauth.ActionUpdate), h.Notification.MarkRead)
		notifications.DELETE("/:id", middleware.Require(appauth.ResourceNotification, appauth.ActionDelete), h.Notification.DeleteNotification)
		notifications.POST("/broadcast", middleware.Require(appauth.ResourceNotification, appauth.ActionBroadcast), h.Notification.Broadcast)
	}

	// --- Templates ---
	templates := api.Group("/templates")
	{
		templates.GET("", middleware.Require(appauth.ResourceTemplate, appauth.ActionList), h.Template.ListTemplates)
		templates.GET("/:id", middleware.Require(appauth.ResourceTemplate, appauth.ActionRead), h.Template.GetTemplate)
		templates.POST("", middleware.Require(appauth.ResourceTemplate, appauth.ActionCreate), h.Template.CreateTemplate)
		templates.PUT("/:id", middleware.Require(appauth.ResourceTemplate, appauth.ActionUpdate), h.Template.UpdateTemplate)
		templates.DELETE("/:id", middleware.Require(appauth.ResourceTemplate, appauth.ActionDelete), h.Template.DeleteTemplate)
	}

	// --- Settings and stats ---
	api.GET("/settings", middleware.Require(appauth.ResourceSetting, appauth.ActionRead), h.Admin.ListSettings)
	api.PUT("/settings/:key", middleware.Require(appauth.ResourceSetting, appauth.ActionUpdate), h.Admin.UpdateSetting)
	api.GET("/stats", middleware.Require(appauth.ResourceStats, appauth.ActionRead), h.Admin.GetStats)

	// Unknown API paths answer with the JSON envelope instead of a page
	router.NoRoute(func(c *gin.Context) {
		if appauth.IsAPIPath(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("Resource not found", nil))
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	// --- Pages ---
	router.GET(appauth.LoginPath, h.Page.LoginPage)
	router.POST(appauth.LoginPath, loginLimit, h.Page.LoginSubmit)
	router.GET("/auth/logout", h.Page.Logout)
	router.GET("/", h.Page.Home)
	router.GET("/admin", h.Page.AdminDashboard)
	router.GET("/rh", h.Page.HRDashboard)
	router.GET("/tuteur", h.Page.TutorDashboard)
	router.GET("/stagiaire", h.Page.InternDashboard)

	// --- Operations ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if ops.Health != nil {
			if err := ops.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("Database unavailable", nil))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
	if ops.Metrics != nil {
		router.GET("/metrics", middleware.Require(appauth.ResourceStats, appauth.ActionRead), ops.Metrics)
	}
}
