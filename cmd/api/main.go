package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/config"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler"
	"github.com/ffaviron/defirose-api/internal/middleware"
	memRepo "github.com/ffaviron/defirose-api/internal/repository/memory"
	pgRepo "github.com/ffaviron/defirose-api/internal/repository/postgres"
	redisRepo "github.com/ffaviron/defirose-api/internal/repository/redis"
	"github.com/ffaviron/defirose-api/internal/service"
	ws "github.com/ffaviron/defirose-api/internal/websocket"
	"github.com/ffaviron/defirose-api/pkg/auth"
	"github.com/ffaviron/defirose-api/pkg/database"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Init("production")
		logger.Error(context.Background(), "failed to load config", zap.Error(err))
		os.Exit(1)
	}
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info(ctx, "configuration loaded", zap.String("path", configPath), zap.String("env", cfg.App.Env))

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.IsDevelopment())
	if err != nil {
		logger.Error(ctx, "failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	if err := database.MigrateDB(db, "migrations"); err != nil {
		logger.Error(ctx, "failed to migrate database", zap.Error(err))
		os.Exit(1)
	}

	// Redis is optional: without it the stats cache and rate limiting are off.
	var redisClient redis.UniversalClient
	var cache repository.CacheRepository
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error(ctx, "failed to connect to Redis", zap.Error(err))
			os.Exit(1)
		}
		defer redisClient.Close()

		cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			logger.Error(ctx, "failed to create cache repository", zap.Error(err))
			os.Exit(1)
		}
		cache = cacheRepo
		logger.Info(ctx, "connected to Redis", zap.String("mode", cfg.Redis.Mode))
	} else {
		logger.Warn(ctx, "Redis not configured: stats cache and rate limiting disabled")
	}

	// Repositories
	participantRepo := pgRepo.NewParticipantRepo(db)
	kilometerRepo := pgRepo.NewKilometerRepo(db)
	clubRepo := pgRepo.NewClubRepo(db)
	adminRepo := pgRepo.NewAdminRepo(db)
	eventRepo := pgRepo.NewEventRepo(db)
	photoRepo := pgRepo.NewPhotoRepo(db)
	rowingRepo := pgRepo.NewRowingRegistrationRepo(db)

	var otpRepo repository.OTPRepository
	switch cfg.OTP.Store {
	case "memory":
		logger.Warn(ctx, "OTP codes are kept in memory: they are lost on restart and not shared between instances")
		otpRepo = memRepo.NewOTPStore()
	default:
		otpRepo = pgRepo.NewOTPRepo(db)
	}

	var sender service.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		sender, err = service.NewResendEmailSender(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.OTP.TTL)
		if err != nil {
			logger.Error(ctx, "failed to create email sender", zap.Error(err))
			os.Exit(1)
		}
	} else {
		sender = service.NewLogEmailSender()
	}

	tokenService, err := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirationHrs)*time.Hour)
	if err != nil {
		logger.Error(ctx, "failed to create token service", zap.Error(err))
		os.Exit(1)
	}

	// Services
	participantService, err := service.NewParticipantService(participantRepo)
	if err != nil {
		logger.Error(ctx, "failed to create participant service", zap.Error(err))
		os.Exit(1)
	}
	statsService, err := service.NewStatsService(participantRepo, kilometerRepo, clubRepo, cache, cfg.Stats.CacheTTL)
	if err != nil {
		logger.Error(ctx, "failed to create stats service", zap.Error(err))
		os.Exit(1)
	}
	statsService.AttachContent(eventRepo, photoRepo, rowingRepo)
	kilometerService, err := service.NewKilometerService(kilometerRepo, clubRepo, participantService, statsService)
	if err != nil {
		logger.Error(ctx, "failed to create kilometer service", zap.Error(err))
		os.Exit(1)
	}
	adminService, err := service.NewAdminService(adminRepo, tokenService)
	if err != nil {
		logger.Error(ctx, "failed to create admin service", zap.Error(err))
		os.Exit(1)
	}
	eventService, err := service.NewEventService(eventRepo)
	if err != nil {
		logger.Error(ctx, "failed to create event service", zap.Error(err))
		os.Exit(1)
	}
	photoService, err := service.NewPhotoService(photoRepo, participantService)
	if err != nil {
		logger.Error(ctx, "failed to create photo service", zap.Error(err))
		os.Exit(1)
	}
	rowingService, err := service.NewRowingCareCupService(rowingRepo, participantService)
	if err != nil {
		logger.Error(ctx, "failed to create rowing care cup service", zap.Error(err))
		os.Exit(1)
	}
	otpService, err := service.NewOTPService(otpRepo, participantService, sender, service.OTPConfig{
		TTL:            cfg.OTP.TTL,
		ResendCooldown: cfg.OTP.ResendCooldown,
		SendTimeout:    cfg.OTP.SendTimeout,
		StoreTimeout:   cfg.OTP.StoreTimeout,
		MaxAttempts:    cfg.OTP.MaxAttempts,
		Pepper:         cfg.OTP.Pepper,
	})
	if err != nil {
		logger.Error(ctx, "failed to create otp service", zap.Error(err))
		os.Exit(1)
	}

	if err := adminService.EnsureBootstrapAdmin(ctx, cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword, cfg.Admin.BootstrapName); err != nil {
		logger.Error(ctx, "failed to bootstrap admin account", zap.Error(err))
		os.Exit(1)
	}

	// Live stats feed
	hub := ws.NewHub()
	go hub.Run(ctx)
	kilometerService.SetPublisher(hub)

	cleanupJob, err := service.NewOTPCleanupJob(otpRepo, cfg.OTP.CleanupInterval)
	if err != nil {
		logger.Error(ctx, "failed to create otp cleanup job", zap.Error(err))
		os.Exit(1)
	}
	go cleanupJob.Start(ctx)

	// Handlers
	otpHandler := handler.NewOTPHandler(otpService)
	participantHandler := handler.NewParticipantHandler(participantService, statsService)
	kilometerHandler := handler.NewKilometerHandler(kilometerService)
	adminHandler := handler.NewAdminHandler(adminService, participantService, kilometerService, statsService)
	eventHandler := handler.NewEventHandler(eventService)
	photoHandler := handler.NewPhotoHandler(photoService)
	rowingHandler := handler.NewRowingCareCupHandler(rowingService)
	wsHandler := handler.NewWSHandler(hub, statsService, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	otpLimit := middleware.OTPRateLimitConfig(cfg.RateLimit.OTPLimit, cfg.RateLimit.OTPWindow)
	loginLimit := middleware.LoginRateLimitConfig(cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(), gin.Recovery())

	if cfg.IsDevelopment() {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			logger.Warn(ctx, "failed to set trusted proxies", zap.Error(err))
		}
	} else if err := router.SetTrustedProxies(nil); err != nil {
		logger.Warn(ctx, "failed to set trusted proxies", zap.Error(err))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/stats", wsHandler.HandleStats)

	api := router.Group("/api")
	{
		otp := api.Group("/otp", rateLimiter.Limit(otpLimit))
		{
			otp.POST("/send", otpHandler.SendCode)
			otp.POST("/verify", otpHandler.VerifyCode)
		}

		api.POST("/participants", participantHandler.Register)
		api.GET("/participants/stats", participantHandler.Stats)
		api.GET("/participants/:id", participantHandler.Get)

		api.POST("/defi-rose/submit", kilometerHandler.Submit)
		api.GET("/kilometers/validated", kilometerHandler.ListValidated)
		api.GET("/kilometers/participant/:id", kilometerHandler.ListByParticipant)
		api.GET("/clubs", kilometerHandler.Clubs)

		api.GET("/events", eventHandler.List)
		api.GET("/photos", photoHandler.ListApproved)
		api.GET("/photos/approved", photoHandler.ListApproved)
		api.POST("/photos", photoHandler.Submit)
		api.POST("/rowing-care-cup", rowingHandler.Register)
		api.GET("/rowing-care-cup/stats", rowingHandler.Stats)

		api.POST("/admin/login", rateLimiter.LimitByIP(loginLimit), adminHandler.Login)

		admin := api.Group("/admin", authMiddleware.AdminAuth())
		{
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/participants", participantHandler.List)
			admin.GET("/kilometers", kilometerHandler.ListAll)
			admin.PUT("/kilometers/:id/validate", middleware.ExtractUintParam("id", handler.EntryIDKey), kilometerHandler.Validate)
			admin.GET("/export/participants.xlsx", adminHandler.ExportParticipants)

			admin.POST("/events", eventHandler.Create)
			admin.PUT("/events/:id", middleware.ExtractUintParam("id", handler.EventIDKey), eventHandler.Update)
			admin.DELETE("/events/:id", middleware.ExtractUintParam("id", handler.EventIDKey), eventHandler.Delete)

			admin.GET("/photos", photoHandler.List)
			admin.POST("/photos/:id/approve", middleware.ExtractUintParam("id", handler.PhotoIDKey), photoHandler.Approve)
			admin.DELETE("/photos/:id", middleware.ExtractUintParam("id", handler.PhotoIDKey), photoHandler.Delete)

			admin.GET("/rowing-care-cup", rowingHandler.List)
			admin.PUT("/rowing-care-cup/:id/paid", middleware.ExtractUintParam("id", handler.RegistrationIDKey), rowingHandler.MarkPaid)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down server")

	// Stops the hub and the cleanup job.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info(ctx, "server exited properly")
}
