package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/klassenhub/klassenhub/internal/app/controllers"
	appMigrations "github.com/klassenhub/klassenhub/internal/app/migrations"
	appRepos "github.com/klassenhub/klassenhub/internal/app/repositories"
	appRoutes "github.com/klassenhub/klassenhub/internal/app/routes"
	appServices "github.com/klassenhub/klassenhub/internal/app/services"
	"github.com/klassenhub/klassenhub/internal/config"
	"github.com/klassenhub/klassenhub/internal/db"
	appMiddleware "github.com/klassenhub/klassenhub/internal/middleware"
	pkgAuth "github.com/klassenhub/klassenhub/internal/pkg/auth"
	"github.com/klassenhub/klassenhub/internal/pkg/editor"
	"github.com/klassenhub/klassenhub/internal/pkg/filestorage"
	"github.com/klassenhub/klassenhub/internal/pkg/helpers"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
	"github.com/klassenhub/klassenhub/internal/pkg/realtime"
	"github.com/klassenhub/klassenhub/internal/pkg/rowcache"
	"github.com/klassenhub/klassenhub/internal/pkg/webhook"
	"github.com/klassenhub/klassenhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService       appServices.AuthService
	PupilService      appServices.PupilService
	ExamService       appServices.ExamService
	CorrectionService appServices.CorrectionService
	ReportService     appServices.ReportService
	ChatService       appServices.ChatService

	AuthController       *appControllers.AuthController
	PupilController      *appControllers.PupilController
	ExamController       *appControllers.ExamController
	CorrectionController *appControllers.CorrectionController
	ReportController     *appControllers.ReportController
	ChatController       *appControllers.ChatController

	AuthMiddleware  *appMiddleware.AuthMiddleware
	Repos           *appRepos.Repositories
	JWTService      *pkgAuth.JWTService
	FileStorage     *filestorage.LocalStorage
	RedisClient     *redis.Client
	RowCache        *rowcache.Cache
	Broker          *realtime.Broker
	Listener        *realtime.Listener
	RealtimeHandler *realtime.Handler
	EditorSessions  *editor.Manager
	WebhookClient   *webhook.Client
	Logger          zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Server.SeedDemo {
		if err := seed.CreateDemoData(context.Background(), dbPool, lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	deps.RowCache = rowcache.New(deps.RedisClient, helpers.ParseDuration(cfg.Redis.RowTTL, 10*time.Minute))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.WebhookClient = webhook.NewClient(cfg.Webhook.URL, helpers.ParseDuration(cfg.Webhook.Timeout, 60*time.Second))

	deps.EditorSessions = editor.NewManager(
		appServices.NewExamEditorStore(deps.Repos.ExamRepository),
		appServices.NewCorrectionEditorStore(deps.Repos.CorrectionRepository),
	)

	deps.Broker = realtime.NewBroker()
	deps.Listener = realtime.NewListener(dbPool, deps.Broker)
	deps.RealtimeHandler = realtime.NewHandler(
		deps.Broker,
		appServices.NewRowStreams(deps.Repos, deps.RowCache),
		appServices.WatchableTables,
	)

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository, deps.JWTService)
	deps.PupilService = appServices.NewPupilService(deps.Repos.PupilRepository)
	deps.ExamService = appServices.NewExamService(deps.Repos.ExamRepository, deps.FileStorage, deps.EditorSessions)
	deps.CorrectionService = appServices.NewCorrectionService(deps.Repos.CorrectionRepository, deps.Repos.ExamRepository)
	deps.ReportService = appServices.NewReportService(deps.Repos.ReportRepository, deps.Repos.PupilRepository, deps.WebhookClient)
	deps.ChatService = appServices.NewChatService(
		deps.Repos.ChatRepository,
		deps.Repos.ExamRepository,
		deps.Repos.CorrectionRepository,
		deps.WebhookClient,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.PupilController = appControllers.NewPupilController(deps.PupilService)
	deps.ExamController = appControllers.NewExamController(deps.ExamService)
	deps.CorrectionController = appControllers.NewCorrectionController(deps.CorrectionService)
	deps.ReportController = appControllers.NewReportController(deps.ReportService)
	deps.ChatController = appControllers.NewChatController(deps.ChatService)

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

	router := gin.Default()

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.PupilController,
		deps.ExamController,
		deps.CorrectionController,
		deps.ReportController,
		deps.ChatController,
		deps.RealtimeHandler,
		deps.AuthMiddleware,
	)

	return router
}
