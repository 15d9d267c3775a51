package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/internal/database"
	"github.com/sazonlabs/sazon/internal/handlers"
	"github.com/sazonlabs/sazon/internal/middleware"
	"github.com/sazonlabs/sazon/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svcs, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	app.handlers, err = handlers.New(app.logger, svcs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.EventBus.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing event bus")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	// Health and metrics endpoints (no auth required)
	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Token exchange (no auth required)
	router.POST("/auth/token", a.handlers.Auth.Token)

	// API routes
	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

		// Search and personalized ranking
		api.GET("/search", a.handlers.Search.Search)
		api.GET("/recommendations", a.handlers.Recommendation.Get)

		// Preference signals
		interactions := api.Group("/interactions")
		{
			interactions.POST("/favorite", a.handlers.Interaction.Favorite)
			interactions.POST("/view", a.handlers.Interaction.View)
			interactions.POST("/search", a.handlers.Interaction.Search)
		}

		// Catalog and ratings
		recipes := api.Group("/recipes")
		{
			recipes.POST("", a.handlers.Recipe.Ingest)
			recipes.PUT("/:id/rating", a.handlers.Rating.Put)
			recipes.DELETE("/:id/rating", a.handlers.Rating.Delete)
			recipes.GET("/:id/rating", a.handlers.Rating.Get)
		}

		// Admin routes (role checks live with the excluded account system)
		admin := api.Group("/admin")
		{
			admin.GET("/overview", a.handlers.Admin.Overview)
		}
	}

	a.router = router
}
