package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/lmsweb/portal/docs"
	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/config"
	"github.com/lmsweb/portal/internal/handlers"
	"github.com/lmsweb/portal/internal/logger"
	"github.com/lmsweb/portal/internal/middleware"
	"github.com/lmsweb/portal/internal/repositories"
	"github.com/lmsweb/portal/internal/services"
	"github.com/lmsweb/portal/internal/views"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title LMS Portal API
// @version 1.0
// @description Web portal for the LMS backend: catalog, enrollment, lesson progression, course authoring and moderation

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the LMS backend at login
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting LMS portal", zap.String("backend", cfg.Backend.BaseURL))

	tokenParser := auth.NewTokenParser(cfg.Session.JWTSecret)
	if cfg.Session.JWTSecret == "" {
		logger.Logger.Warn("JWT_SECRET is not set, token claims are read without signature verification")
	}

	// Initialize repositories
	backend := repositories.NewBackend(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Logger)
	authRepo := repositories.NewAuthRepository(backend)
	courseRepo := repositories.NewCourseRepository(backend)
	studentRepo := repositories.NewStudentRepository(backend)
	adminRepo := repositories.NewAdminRepository(backend)
	uploadRepo := repositories.NewUploadRepository(backend)

	// Lesson composer with upload progress logging
	lessonComposer := composer.NewComposer(uploadRepo, logger.Logger)
	lessonComposer.Pipeline().OnStart = func(task composer.UploadTask, total int) {
		logger.Logger.Info("Uploading lesson file",
			zap.String("task_id", task.ID),
			zap.Int("lesson", task.LessonNumber()),
			zap.Int("total", total),
			zap.String("file", task.File.Name),
		)
	}

	// Initialize services
	authSvc := services.NewAuthService(authRepo, tokenParser, logger.Logger)
	studentSvc := services.NewStudentService(studentRepo, logger.Logger)
	instructorSvc := services.NewInstructorService(courseRepo, lessonComposer, logger.Logger)
	adminSvc := services.NewAdminService(adminRepo, logger.Logger)
	dispatcher := services.NewDispatcher(adminSvc, instructorSvc, logger.Logger)

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Logger.Fatal("Failed to parse page templates", zap.Error(err))
	}

	// Initialize handlers
	session := handlers.SessionOptions{CookieName: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	authHandler := handlers.NewAuthHandler(authSvc, session, renderer, logger.Logger)
	studentHandler := handlers.NewStudentHandler(studentSvc, renderer, logger.Logger)
	instructorHandler := handlers.NewInstructorHandler(instructorSvc, cfg.Upload.MaxSizeBytes, renderer, logger.Logger)
	adminHandler := handlers.NewAdminHandler(adminSvc, dispatcher, renderer, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(logger.Middleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(cfg.Upload.MaxSizeBytes))
	r.Use(middleware.SessionMiddleware(tokenParser, cfg.Session.CookieName, logger.Logger))
	if cfg.CSRF.Enabled() {
		r.Use(middleware.CSRFMiddleware([]byte(cfg.CSRF.Key), cfg.Session.CookieSecure))
	} else {
		logger.Logger.Warn("CSRF_KEY is not set, form posts are not CSRF protected")
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authHandler.RegisterRoutes(r)
	studentHandler.RegisterRoutes(r)
	instructorHandler.RegisterRoutes(r)
	adminHandler.RegisterRoutes(r)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second, // Course saves carry lesson files
		WriteTimeout: 5 * time.Minute,  // and wait for every upload to finish
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
