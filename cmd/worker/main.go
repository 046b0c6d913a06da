package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(ctx, container.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	cfg := loadConfig(c.Config)

	health, err := startServices(c, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	srv, err := setupAsynqServer(cfg, initializeHandlers(c))
	if err != nil {
		log.Fatal().Err(err).Msg("[Worker] Failed to start")
	}

	scheduler, err := setupScheduler(cfg)
	if err != nil {
		srv.Shutdown()
		log.Fatal().Err(err).Msg("[Scheduler] Failed to register jobs")
	}

	<-ctx.Done()

	log.Info().Msg("[Shutdown] Gracefully stopping")
	scheduler.Shutdown()
	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = health.Shutdown(shutdownCtx)

	log.Info().Msg("[Shutdown] Stopped")
}
