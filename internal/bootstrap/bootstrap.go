package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/dancestudio/internal/app/controllers"
	appRepos "github.com/yigit/dancestudio/internal/app/repositories"
	appRoutes "github.com/yigit/dancestudio/internal/app/routes"
	appServices "github.com/yigit/dancestudio/internal/app/services"
	"github.com/yigit/dancestudio/internal/config"
	"github.com/yigit/dancestudio/internal/db"
	appMiddleware "github.com/yigit/dancestudio/internal/middleware"
	pkgAuth "github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/email"
	"github.com/yigit/dancestudio/internal/pkg/helpers"
	"github.com/yigit/dancestudio/internal/pkg/logger"
	"github.com/yigit/dancestudio/internal/pkg/viewcache"
	"github.com/yigit/dancestudio/internal/pkg/websocket"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Database   *db.PostgresDB
	Redis      *redis.Client
	Repos      *appRepos.Repositories
	Services   *appServices.Services
	Hub        *websocket.Hub
	Views      *viewcache.Cache
	JWTService *pkgAuth.JWTService
	Cookies    appMiddleware.SessionCookies
	Logger     zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "dancestudio",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection pool
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// SetupViewStore connects the shared view cache. Outside production a missing
// Redis falls back to a process-local store.
func SetupViewStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (viewcache.Store, *redis.Client, error) {
	ttl := helpers.ParseDuration(cfg.Redis.ViewTTL, 10*time.Minute)

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if isProduction(cfg) {
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		lgr.Warn().Err(err).Msg("Redis unavailable, caching views in memory")
		return viewcache.NewMemoryStore(), nil, nil
	}

	lgr.Info().Str("addr", opts.Addr).Dur("ttl", ttl).Msg("View cache connected to Redis")
	return viewcache.NewRedisStore(client, ttl), client, nil
}

// BuildDependencies initializes repositories, the view cache and services.
// The websocket hub runs until ctx is cancelled.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}

	store, client, err := SetupViewStore(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	deps.Redis = client

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run(ctx)
	deps.Views = viewcache.New(store, lgr, deps.Hub)

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		FromName:   cfg.SMTP.FromName,
		FromEmail:  cfg.SMTP.FromEmail,
		UseTLS:     cfg.SMTP.UseTLS,
		StudioName: cfg.Studio.Name,
	}, lgr)

	deps.Services = appServices.NewServices(appServices.Options{
		Invoker:   db.NewProcedureInvoker(database.Pool, cfg.Database.Schema, lgr),
		Repos:     deps.Repos,
		Views:     deps.Views,
		JWT:       deps.JWTService,
		Mailer:    mailer,
		PublicURL: strings.TrimRight(cfg.Server.PublicURL, "/"),
		Location:  cfg.StudioLocation(),
		Logger:    lgr,
	})

	deps.Cookies = appMiddleware.SessionCookies{
		Prefix: cfg.Session.CookiePrefix,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.Secure,
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if isProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr))
	router.Use(appMiddleware.RequestLogger(lgr))

	session := appMiddleware.NewSessionMiddleware(deps.Services.Auth, appMiddleware.SessionConfig{
		Cookies:     deps.Cookies,
		LoginPath:   cfg.Session.LoginPath,
		PublicPaths: cfg.Session.PublicPaths,
	}, lgr)
	router.Use(session.Handler())

	svc := deps.Services
	appRoutes.SetupRouter(router, appRoutes.Handlers{
		Auth:    appControllers.NewAuthController(svc.Auth, deps.Cookies, cfg.Session.ErrorPath, lgr),
		Booking: appControllers.NewBookingController(svc.Booking, lgr),
		Course:  appControllers.NewCourseController(svc.Course, lgr),
		Profile: appControllers.NewProfileController(svc.Profile, svc.Auth, lgr),
		Admin:   appControllers.NewAdminController(svc.Admin, lgr),
		Feed: websocket.NewHandler(deps.Hub, []string{
			viewcache.PathCourses,
			viewcache.PathAdminScanner,
			viewcache.PathAdminUsers,
			viewcache.PathAdminReviews,
		}, lgr),
		Roles: deps.Repos.ProfileRepository,
	})

	return router
}

// Close releases the connections held by the dependencies
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if d.Database != nil {
		d.Database.Close()
	}
}

func isProduction(cfg *config.Config) bool {
	return strings.ToLower(cfg.Server.Mode) == "production"
}
