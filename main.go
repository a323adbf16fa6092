package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"quickbuy/internal/config"
	"quickbuy/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.Init(logging.Config{Mode: cfg.LogMode, Level: cfg.LogLevel, Filename: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	app, err := newApp(cfg)
	if err != nil {
		zap.S().Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			zap.S().Errorf("Error releasing resources: %v", err)
		}
	}()

	if err := app.startConsumer(); err != nil {
		zap.S().Errorf("Failed to start RabbitMQ consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zap.S().Infof("Starting server on port %s (store: %s)", cfg.AppPort, cfg.DBDriver)
		if err := app.fiber.Listen(cfg.AppPort); err != nil {
			zap.S().Errorf("Server stopped: %v", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	zap.S().Info("Shutting down server...")
	if err := app.fiber.Shutdown(); err != nil {
		zap.S().Errorf("Error during Fiber shutdown: %v", err)
	}
	zap.S().Info("Server gracefully stopped")
}
