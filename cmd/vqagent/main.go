package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"

	"github.com/itiroinazawa/image-vqa-agent/pkg/config"
	"github.com/itiroinazawa/image-vqa-agent/pkg/handlers"
	"github.com/itiroinazawa/image-vqa-agent/pkg/ollama"
	"github.com/itiroinazawa/image-vqa-agent/pkg/repository"
	"github.com/itiroinazawa/image-vqa-agent/pkg/services"
)

const modelVerifyTimeout = 5 * time.Minute

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	// Setup logging
	log.SetOutput(os.Stdout)
	log.Info("Starting VQA agent")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogging(cfg)

	// Create working directories before anything touches them
	for _, dir := range []string{cfg.TempImageDir, cfg.ModelCacheDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.WithError(err).WithField("dir", dir).Fatal("Failed to create directory")
		}
	}

	// Initialize database
	store, err := bolthold.Open(cfg.DBPath(), 0666, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}

	// Initialize repository
	repo := repository.NewBoltRepository(store)

	// Initialize services
	client := ollama.NewClient(cfg.OllamaHost)
	modelService := services.NewModelService(client, cfg.ImageModel, cfg.TextModel, cfg.ModelCacheDir)
	imageService := services.NewImageService(cfg.TempImageDir, cfg.MaxImageAge)
	vqaService := services.NewVQAService(imageService, modelService, modelService)
	cleanupService := services.NewCleanupService(imageService, repo)
	appService := services.NewAppService(repo, imageService, vqaService, modelService, cleanupService)

	// Verify the backend and pull missing models; requests will retry lazily
	// if this fails, so startup continues.
	verifyCtx, cancel := context.WithTimeout(context.Background(), modelVerifyTimeout)
	if err := modelService.EnsureModels(verifyCtx); err != nil {
		log.WithError(err).Warn("Model verification failed, continuing without it")
	}
	cancel()

	// Initialize HTTP handlers
	handler := handlers.NewHandler(appService, cfg.MaxUploadSize)

	// Start background maintenance
	go startBackgroundTasks(appService, cfg.CleanupInterval)

	// Start HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // inference can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("address", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	waitForShutdown(server, appService)
}

// configureLogging applies DEBUG and LOG_LEVEL to logrus.
func configureLogging(cfg *config.Config) {
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("Invalid LOG_LEVEL")
	}
	log.SetLevel(level)
}

// startBackgroundTasks runs the periodic maintenance loop
func startBackgroundTasks(appService *services.AppService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run maintenance immediately on startup
	if err := appService.RunMaintenance(); err != nil {
		log.WithError(err).Error("Failed to run maintenance")
	}

	for range ticker.C {
		if err := appService.RunMaintenance(); err != nil {
			log.WithError(err).Error("Failed to run maintenance")
		}
	}
}

// waitForShutdown waits for shutdown signals and gracefully shuts down
func waitForShutdown(server *http.Server, appService *services.AppService) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig).Info("Received shutdown signal, initiating graceful shutdown")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	} else {
		log.Info("HTTP server shut down successfully")
	}

	// Shutdown application service
	if err := appService.Close(); err != nil {
		log.WithError(err).Error("Failed to shutdown application service")
	} else {
		log.Info("Application service shut down successfully")
	}

	log.Info("Graceful shutdown completed")
}
