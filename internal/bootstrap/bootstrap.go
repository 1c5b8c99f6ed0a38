package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/applicant-wizard/internal/app/controllers"
	"github.com/yigit/applicant-wizard/internal/app/formclient"
	appMigrations "github.com/yigit/applicant-wizard/internal/app/migrations"
	appRepos "github.com/yigit/applicant-wizard/internal/app/repositories"
	appRoutes "github.com/yigit/applicant-wizard/internal/app/routes"
	appServices "github.com/yigit/applicant-wizard/internal/app/services"
	"github.com/yigit/applicant-wizard/internal/app/wizard"
	"github.com/yigit/applicant-wizard/internal/config"
	"github.com/yigit/applicant-wizard/internal/db"
	appMiddleware "github.com/yigit/applicant-wizard/internal/middleware"
	pkgAuth "github.com/yigit/applicant-wizard/internal/pkg/auth"
	"github.com/yigit/applicant-wizard/internal/pkg/logger"
	"github.com/yigit/applicant-wizard/internal/pkg/websocket"
	sqlMigrations "github.com/yigit/applicant-wizard/migrations"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	FormClient       *formclient.Client
	WizardService    appServices.WizardService
	FormService      appServices.FormService
	WizardController *appControllers.WizardController
	FormController   *appControllers.FormController
	HealthController *appControllers.HealthController
	EventsHandler    *websocket.Handler
	Hub              *websocket.Hub
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to postgres and applies migrations when sessions are
// stored there. It returns a nil pool for the memory store.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg.Session.Store != config.StorePostgres {
		lgr.Info().Str("store", cfg.Session.Store).Msg("Sessions kept in memory, skipping database setup")
		return nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	if err := RunMigrations(ctx, database.Pool, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database.Pool, nil
}

// RunMigrations applies the embedded schema
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	n, err := appMigrations.NewMigrator(pool, lgr).MigrateFS(ctx, sqlMigrations.FS)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("files", n).Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.Repos, err = appRepos.NewRepositories(appRepos.Store(cfg.Session.Store), dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	deps.FormClient, err = formclient.New(formclient.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		Policy:    formclient.Policy(cfg.Backend.Policy),
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
	}, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize form backend client")
		return nil, fmt.Errorf("failed to initialize form backend client: %w", err)
	}
	if deps.FormClient.DemoMode() {
		lgr.Warn().Msg("No form backend configured, serving demo data and simulating submissions")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Session.Secret,
		SessionTTL:  cfg.Wizard.SessionTTL,
		TokenIssuer: cfg.Session.Issuer,
	})

	deps.Hub = websocket.NewHub(logger.Component("websocket_hub"))
	deps.EventsHandler = websocket.NewHandler(deps.Hub, cfg.AllowedOrigins(), logger.Component("websocket"))

	deps.WizardService = appServices.NewWizardService(
		deps.Repos.SessionRepository,
		deps.FormClient,
		deps.JWTService,
		deps.Hub,
		appServices.WizardConfig{
			Debounce:    cfg.Wizard.Debounce,
			Scope:       wizard.Scope(cfg.Wizard.NextValidationScope),
			LoadTimeout: cfg.Wizard.LoadTimeout,
		},
		lgr,
	)
	deps.FormService = appServices.NewFormService(deps.FormClient, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.WizardController = appControllers.NewWizardController(deps.WizardService)
	deps.FormController = appControllers.NewFormController(deps.FormService)
	// A nil *pgxpool.Pool must not become a non-nil Pinger
	var pinger appControllers.Pinger
	if dbPool != nil {
		pinger = dbPool
	}
	deps.HealthController = appControllers.NewHealthController(pinger, cfg.Session.Store, deps.FormClient.DemoMode())

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterJSONTagNames()

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	if origins := cfg.AllowedOrigins(); len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	router.Use(cors.New(corsConfig))

	appRoutes.SetupRouter(router,
		deps.WizardController,
		deps.FormController,
		deps.HealthController,
		deps.EventsHandler,
		deps.AuthMiddleware,
	)

	return router
}

// StartBackground runs the event hub and the session sweeper. The hub stops
// with ctx; the returned scheduler must be stopped by the caller.
func StartBackground(ctx context.Context, cfg *config.Config, deps *Dependencies) (*cron.Cron, error) {
	go deps.Hub.Run(ctx)

	sweeper, err := appServices.StartSessionSweeper(deps.WizardService, cfg.Wizard.SweepSchedule, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start session sweeper: %w", err)
	}
	return sweeper, nil
}
