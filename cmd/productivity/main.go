package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/deppfellow/go-productivity/internal/database"
	"github.com/deppfellow/go-productivity/internal/handler"
	"github.com/deppfellow/go-productivity/internal/logger"
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/repository"
	"github.com/deppfellow/go-productivity/internal/router"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
)

const (
	DefaultContextTimeout = 30
	MigrationTimeout      = 2 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := logger.NewLogger("info", false)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if cfg.Primary.Env != "local" {
		ctx, cancel := context.WithTimeout(context.Background(), MigrationTimeout)
		err := database.Migrate(ctx, &log, cfg)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv, services.Auth)
	r := router.NewRouter(srv, handlers, middlewares)

	srv.SetupHTTPServer(r)

	// Every job handler is registered by now.
	if err := srv.Job.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start job server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
