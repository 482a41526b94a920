package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edulane/educenter-api/api/swagger"
	"github.com/edulane/educenter-api/internal/handler"
	"github.com/edulane/educenter-api/internal/middleware"
	"github.com/edulane/educenter-api/internal/repository"
	"github.com/edulane/educenter-api/internal/service"
	"github.com/edulane/educenter-api/pkg/cache"
	"github.com/edulane/educenter-api/pkg/config"
	"github.com/edulane/educenter-api/pkg/database"
	"github.com/edulane/educenter-api/pkg/logger"
	corsmiddleware "github.com/edulane/educenter-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edulane/educenter-api/pkg/middleware/requestid"
	"github.com/edulane/educenter-api/pkg/storage"
)

// @title EduCenter API
// @version 1.0.0
// @description Education center management portal
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Schedule.GridCacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "educenter-api",
		SingleSession:      cfg.JWT.SingleSession,
	})
	slotSvc := service.NewTimeSlotService(slotRepo, cacheSvc, cfg.Schedule.CatalogCacheTTL, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	gridSvc := service.NewGridService(classRepo, slotRepo, cacheSvc, cfg.Schedule.GridCacheTTL, logr)
	classSvc := service.NewClassService(classRepo, slotRepo, teacherRepo, roomRepo, gridSvc, metrics, validate, logr,
		cfg.Schedule.MaxWeekdayLoad, cfg.Schedule.MaxWeekendLoad)
	sessionSvc := service.NewSessionService(sessionRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, classRepo, studentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, sessionRepo, enrollmentRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, enrollmentRepo, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportRepo := repository.NewExportJobRepository(db)
		exportSvc = service.NewExportService(exportRepo, gridSvc, store, signer, metrics, logr,
			cfg.APIPrefix, cfg.Exports.WorkerConcurrency, cfg.Exports.WorkerRetries)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		TimeSlots:   handler.NewTimeSlotHandler(slotSvc),
		Teachers:    handler.NewTeacherHandler(teacherSvc, classSvc, gridSvc),
		Rooms:       handler.NewRoomHandler(roomSvc, classSvc, gridSvc),
		Students:    handler.NewStudentHandler(studentSvc, enrollmentSvc),
		Classes:     handler.NewClassHandler(classSvc, sessionSvc, gridSvc),
		Sessions:    handler.NewSessionHandler(sessionSvc, attendanceSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc, attendanceSvc),
		Payments:    handler.NewPaymentHandler(paymentSvc),
		Metrics:     metricsHandler,
	}
	if exportSvc != nil {
		handlers.Exports = handler.NewExportHandler(exportSvc)
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handlers)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
