package main

import (
	"log"
	"os"

	"github.com/lmsweb/portal/internal/auth"
	"github.com/lmsweb/portal/internal/composer"
	"github.com/lmsweb/portal/internal/config"
	"github.com/lmsweb/portal/internal/logger"
	"github.com/lmsweb/portal/internal/repositories"
	"github.com/lmsweb/portal/internal/services"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	parser := auth.NewTokenParser(cfg.Session.JWTSecret)
	backend := repositories.NewBackend(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Logger)

	lessonComposer := composer.NewComposer(repositories.NewUploadRepository(backend), logger.Logger)
	cli := &commandLine{
		auth:       services.NewAuthService(repositories.NewAuthRepository(backend), parser, logger.Logger),
		instructor: services.NewInstructorService(repositories.NewCourseRepository(backend), lessonComposer, logger.Logger),
		student:    services.NewStudentService(repositories.NewStudentRepository(backend), logger.Logger),
		parser:     parser,
		out:        os.Stdout,
	}
	lessonComposer.Pipeline().OnStart = cli.uploadStarted

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Logger.Error("command failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}
