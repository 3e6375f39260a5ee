package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/internhub/internal/app/auth"
	appControllers "github.com/yigit/internhub/internal/app/controllers"
	appMigrations "github.com/yigit/internhub/internal/app/migrations"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/pages"
	appRepos "github.com/yigit/internhub/internal/app/repositories"
	appRoutes "github.com/yigit/internhub/internal/app/routes"
	appServices "github.com/yigit/internhub/internal/app/services"
	"github.com/yigit/internhub/internal/config"
	"github.com/yigit/internhub/internal/db"
	appMiddleware "github.com/yigit/internhub/internal/middleware"
	pkgAuth "github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/email"
	"github.com/yigit/internhub/internal/pkg/filestorage"
	"github.com/yigit/internhub/internal/pkg/helpers"
	"github.com/yigit/internhub/internal/pkg/logger"
	"github.com/yigit/internhub/internal/pkg/metrics"
	"github.com/yigit/internhub/internal/pkg/ratelimit"
	"github.com/yigit/internhub/internal/pkg/websocket"
	"github.com/yigit/internhub/internal/scheduler"
	"github.com/yigit/internhub/internal/seed"
)

// revoked refresh tokens are kept this long before the cleanup job drops them
const revokedTokenRetention = 7 * 24 * time.Hour

// Dependencies holds all the application dependencies
type Dependencies struct {
	Pool         *pgxpool.Pool
	Repos        *appRepos.Repositories
	Storage      filestorage.ObjectStorage
	Redis        *redis.Client
	LoginLimiter *ratelimit.Limiter
	JWTService   *pkgAuth.JWTService
	OIDC         *pkgAuth.OIDCVerifier
	Authorizer   *appAuth.Authorizer
	Hub          *websocket.Hub
	Metrics      *metrics.Metrics
	Scheduler    *scheduler.Scheduler
	Controllers  appRoutes.Controllers
	Logger       zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ParseConfig(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies the embedded migrations and
// seeds the default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	pool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrator := appMigrations.NewMigrator(pool, logger.Component("migrations"))
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		pool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	repos := appRepos.NewRepositories(pool)
	stores := seed.Stores{
		Users:     repos.UserRepository,
		Settings:  repos.SettingRepository,
		Templates: repos.TemplateRepository,
	}
	opts := seed.Options{AdminEmail: cfg.Seed.AdminEmail, AdminPassword: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultData(ctx, stores, opts, logger.Component("seed")); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return pool, nil
}

func setupStorage(ctx context.Context, cfg *config.Config) (filestorage.ObjectStorage, error) {
	if strings.ToLower(cfg.Storage.Driver) == "s3" {
		return filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:       cfg.Storage.Bucket,
			Region:       cfg.Storage.Region,
			Endpoint:     cfg.Storage.Endpoint,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UsePathStyle: cfg.Storage.UsePathStyle,
		})
	}
	return filestorage.NewLocalStorage(cfg.Server.StoragePath)
}

// BuildDependencies initializes repositories, infrastructure clients,
// services and controllers. ctx bounds the background workers.
func BuildDependencies(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Pool: pool, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(pool)
	deps.Metrics = metrics.New()

	var err error
	deps.Storage, err = setupStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	if cfg.Redis.URL != "" {
		deps.Redis, err = ratelimit.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			lgr.Warn().Err(err).Msg("Redis unavailable, login rate limiting disabled")
		} else {
			window := helpers.ParseDuration(cfg.Redis.LoginWindow, time.Minute)
			deps.LoginLimiter = ratelimit.NewLimiter(deps.Redis, cfg.Redis.LoginLimit, window, "internhub")
		}
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	authOpts := appServices.AuthOptions{AllowRegistration: cfg.Auth.AllowRegistration}
	if cfg.Auth.OIDC.IssuerURL != "" {
		deps.OIDC, err = pkgAuth.NewOIDCVerifier(ctx, pkgAuth.OIDCConfig{
			IssuerURL:    cfg.Auth.OIDC.IssuerURL,
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
			RedirectURL:  cfg.Auth.OIDC.RedirectURL,
			Scopes:       cfg.Auth.OIDC.Scopes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
		}
		authOpts.OIDC = deps.OIDC
		lgr.Info().Str("issuer", cfg.Auth.OIDC.IssuerURL).Msg("OIDC provider configured")
	}
	deps.Authorizer = appAuth.NewAuthorizer(deps.Repos.UserRepository,
		models.Role(cfg.Auth.MissingProfileRole), logger.Component("authorizer"))

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		UseTLS:    cfg.Email.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, logger.Component("email"))
	authOpts.Mailer = mailer

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	go deps.Hub.Run(ctx)

	repos := deps.Repos
	authService := appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWTService, authOpts, logger.Component("auth"))
	userService := appServices.NewUserService(repos.UserRepository, repos.TokenRepository, logger.Component("users"))
	internService := appServices.NewInternService(repos.InternRepository, repos.UserRepository, logger.Component("interns"))
	notificationService := appServices.NewNotificationService(repos.NotificationRepository, repos.UserRepository,
		appServices.NotificationOptions{
			Pusher:       deps.Hub,
			Mailer:       mailer,
			EmailEnabled: cfg.Email.NotifyByEmail,
			Metrics:      deps.Metrics,
		}, logger.Component("notifications"))
	requestService := appServices.NewRequestService(repos.RequestRepository, repos.InternRepository, notificationService, logger.Component("requests"))
	documentService := appServices.NewDocumentService(repos.DocumentRepository, repos.InternRepository, repos.RequestRepository, deps.Storage, logger.Component("documents"))
	evaluationService := appServices.NewEvaluationService(repos.EvaluationRepository, repos.InternRepository, notificationService, logger.Component("evaluations"))
	planningService := appServices.NewPlanningService(repos.PlanningRepository, repos.InternRepository, logger.Component("planning"))
	templateService := appServices.NewTemplateService(repos.TemplateRepository, repos.InternRepository,
		repos.SettingRepository, repos.DocumentRepository, deps.Storage, logger.Component("templates"))
	settingService := appServices.NewSettingService(repos.SettingRepository, logger.Component("settings"))
	statsService := appServices.NewStatsService(appServices.StatsSources{
		Users:       repos.UserRepository,
		Interns:     repos.InternRepository,
		Requests:    repos.RequestRepository,
		Documents:   repos.DocumentRepository,
		Evaluations: repos.EvaluationRepository,
		Planning:    repos.PlanningRepository,
	}, logger.Component("stats"))

	cookies := appControllers.CookieConfig{
		Secure:     cfg.Server.CookieSecure || cfg.IsProduction(),
		AccessTTL:  deps.JWTService.AccessTokenTTL(),
		RefreshTTL: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
	}
	ctrlLog := logger.Component("http")
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(authService, cookies, ctrlLog),
		User:         appControllers.NewUserController(userService, ctrlLog),
		Intern:       appControllers.NewInternController(internService, ctrlLog),
		Request:      appControllers.NewRequestController(requestService, ctrlLog),
		Document:     appControllers.NewDocumentController(documentService, templateService, ctrlLog),
		Evaluation:   appControllers.NewEvaluationController(evaluationService, ctrlLog),
		Planning:     appControllers.NewPlanningController(planningService, ctrlLog),
		Notification: appControllers.NewNotificationController(notificationService, ctrlLog),
		Template:     appControllers.NewTemplateController(templateService, ctrlLog),
		Admin:        appControllers.NewAdminController(settingService, statsService, ctrlLog),
		Page: appControllers.NewPageController(appControllers.PageServices{
			Auth:          authService,
			Interns:       internService,
			Notifications: notificationService,
			Stats:         statsService,
		}, cookies, logger.Component("pages")),
		NotificationWS: websocket.NewHandler(deps.Hub, appMiddleware.PrincipalUserID, logger.Component("websocket")).HandleConnection,
	}

	if cfg.Scheduler.Enabled {
		deps.Scheduler, err = setupScheduler(cfg, deps)
		if err != nil {
			return nil, err
		}
	}

	return deps, nil
}

func setupScheduler(cfg *config.Config, deps *Dependencies) (*scheduler.Scheduler, error) {
	s := scheduler.New(deps.Metrics, logger.Component("scheduler"))
	if err := s.Add(scheduler.JobInternCompletion, cfg.Scheduler.InternCompletionSpec,
		scheduler.CompleteInterns(deps.Repos.InternRepository)); err != nil {
		return nil, err
	}
	if err := s.Add(scheduler.JobTokenCleanup, cfg.Scheduler.TokenCleanupSpec,
		scheduler.CleanupTokens(deps.Repos.TokenRepository, revokedTokenRetention)); err != nil {
		return nil, err
	}
	return s, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()

	tmpl, err := pages.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	session := appMiddleware.NewSessionMiddleware(pkgAuth.NewChainVerifier(verifiersOf(deps)...), logger.Component("session"))
	gate := appMiddleware.NewAccessGate(deps.Authorizer, deps.Metrics, logger.Component("gate"))

	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr),
		deps.Metrics.Middleware(),
		session.Resolve(),
		gate.Handle(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, appRoutes.Ops{
		Health:  deps.Pool.Ping,
		Metrics: deps.Metrics.Handler(),
	}, appMiddleware.LoginRateLimit(deps.LoginLimiter, logger.Component("ratelimit")))

	return router, nil
}

func verifiersOf(deps *Dependencies) []pkgAuth.IdentityVerifier {
	verifiers := []pkgAuth.IdentityVerifier{deps.JWTService}
	if deps.OIDC != nil {
		verifiers = append(verifiers, deps.OIDC)
	}
	return verifiers
}
