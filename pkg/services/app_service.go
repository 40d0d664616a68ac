package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/itiroinazawa/image-vqa-agent/pkg/models"
	"github.com/itiroinazawa/image-vqa-agent/pkg/repository"
)

// AppService coordinates all application services
type AppService struct {
	repo    repository.Repository
	images  *ImageService
	vqa     *VQAService
	models  *ModelService
	cleanup *CleanupService
}

func NewAppService(
	repo repository.Repository,
	images *ImageService,
	vqa *VQAService,
	modelService *ModelService,
	cleanup *CleanupService,
) *AppService {
	return &AppService{
		repo:    repo,
		images:  images,
		vqa:     vqa,
		models:  modelService,
		cleanup: cleanup,
	}
}

// AnswerFromUpload saves uploaded image bytes, validates them and runs the
// VQA pipeline over the question.
func (s *AppService) AnswerFromUpload(ctx context.Context, image []byte, question string) (*models.Exchange, error) {
	path, err := s.images.SaveUpload(image)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	return s.answer(ctx, models.ExchangeSourceUpload, path, question)
}

// AnswerFromURL downloads the image behind url, validates it and runs the
// VQA pipeline over the question.
func (s *AppService) AnswerFromURL(ctx context.Context, url, question string) (*models.Exchange, error) {
	path, err := s.images.DownloadFromURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	return s.answer(ctx, models.ExchangeSourceURL, path, question)
}

func (s *AppService) answer(ctx context.Context, source models.ExchangeSource, path, question string) (*models.Exchange, error) {
	if err := s.images.Validate(path); err != nil {
		return nil, err
	}

	answer, profile, err := s.vqa.AnswerQuestion(ctx, path, question)
	if err != nil {
		return nil, err
	}

	exchange := &models.Exchange{
		ID:        uuid.New().String(),
		Source:    source,
		ImagePath: path,
		Question:  question,
		Answer:    answer,
		Caption:   profile.Caption,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveExchange(exchange); err != nil {
		// The answer was produced; losing the history entry is not fatal.
		log.WithError(err).WithField("id", exchange.ID).Error("Failed to record exchange")
	}

	return exchange, nil
}

// History returns up to limit recent exchanges, newest first.
func (s *AppService) History(limit int) ([]*models.Exchange, error) {
	return s.repo.ListRecentExchanges(limit)
}

// HistoryStats returns aggregate counts over stored exchanges.
func (s *AppService) HistoryStats() (*models.HistoryStats, error) {
	count, err := s.repo.CountExchanges()
	if err != nil {
		return nil, err
	}

	stats := &models.HistoryStats{TotalExchanges: count}
	if count > 0 {
		recent, err := s.repo.ListRecentExchanges(1)
		if err != nil {
			return nil, err
		}
		if len(recent) > 0 {
			stats.LastExchangeAt = recent[0].CreatedAt
		}
	}
	return stats, nil
}

// ResolveImage maps a temp-image filename to its on-disk path.
func (s *AppService) ResolveImage(name string) (string, error) {
	return s.images.ResolveImage(name)
}

// HealthCheck probes the inference backend and returns its version.
func (s *AppService) HealthCheck(ctx context.Context) (string, error) {
	return s.models.Ping(ctx)
}

// RunMaintenance executes one cleanup pass with proper logging
func (s *AppService) RunMaintenance() error {
	log.Info("Starting maintenance tasks")
	startTime := time.Now()

	if _, err := s.cleanup.Run(); err != nil {
		log.WithError(err).Error("Failed to run cleanup")
		return fmt.Errorf("running cleanup: %w", err)
	}

	log.WithField("duration", time.Since(startTime)).Info("Maintenance tasks completed")
	return nil
}

// Close shuts down the application service and releases resources.
func (s *AppService) Close() error {
	// Final sweep so the temp directory doesn't accumulate across restarts.
	if _, err := s.images.CleanupTempImages(); err != nil {
		log.WithError(err).Warn("Final temp image cleanup failed")
	}
	return s.repo.Close()
}
