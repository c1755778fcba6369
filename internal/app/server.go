// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tourguide_backend/internal/auth"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/destination"
	"tourguide_backend/internal/guide"
	"tourguide_backend/internal/jobs"
	"tourguide_backend/internal/middleware"
	"tourguide_backend/internal/notification"
	platformES "tourguide_backend/internal/platform/elasticsearch"
	"tourguide_backend/internal/request"
	"tourguide_backend/internal/shared"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	authHandler         *auth.Handler
	guideHandler        *guide.Handler
	destinationHandler  *destination.Handler
	requestHandler      *request.Handler
	notificationHandler *notification.Handler

	// Jobs
	notificationExpiryJob *jobs.NotificationExpiryJob

	// ESClient is exposed for command-line tasks that need direct
	// Elasticsearch access, such as the sync-destinations subcommand.
	ESClient *platformES.ESClientWrapper
	// AppLogger is the application-wide logger, exposed for use after
	// server initialization.
	AppLogger *zap.Logger
	// DB is exposed so startup code can run schema migrations.
	DB *gorm.DB
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *auth.Handler,
	guideHandler *guide.Handler,
	destinationHandler *destination.Handler,
	requestHandler *request.Handler,
	notificationHandler *notification.Handler,
	notificationExpiryJob *jobs.NotificationExpiryJob,
	db *gorm.DB,
	esClient *platformES.ESClientWrapper,
	tokenService shared.TokenService,
	blocklist auth.TokenBlocklistService,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	if cfg.MetricsEnabled {
		router.Use(middleware.PrometheusMetrics())
	}

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, blocklist, logger.Named("AuthMiddleware"))
	optionalAuthMW := middleware.OptionalAuthMiddleware(tokenService, blocklist, logger.Named("OptionalAuthMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "message": "Database unreachable."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Tour Guide API is healthy!"})
	})
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1, authMW)
	guideHandler.RegisterRoutes(v1, authMW)
	destinationHandler.RegisterRoutes(v1, authMW, optionalAuthMW)
	requestHandler.RegisterRoutes(v1, authMW)

	notificationGroup := v1.Group("/notifications", authMW)
	notificationHandler.RegisterRoutes(notificationGroup)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:            httpServer,
		router:                router,
		cfg:                   cfg,
		logger:                logger,
		authHandler:           authHandler,
		guideHandler:          guideHandler,
		destinationHandler:    destinationHandler,
		requestHandler:        requestHandler,
		notificationHandler:   notificationHandler,
		notificationExpiryJob: notificationExpiryJob,
		ESClient:              esClient,
		AppLogger:             logger,
		DB:                    db,
	}, nil
}

func (s *Server) Start() error {
	if s.notificationExpiryJob != nil {
		err := s.notificationExpiryJob.SetupAndStart()
		if err != nil {
			s.logger.Error("Failed to setup and start notification expiry job", zap.Error(err))
		}
	} else {
		s.logger.Info("Notification expiry job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.notificationExpiryJob != nil {
		s.notificationExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
