package services

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/itiroinazawa/image-vqa-agent/pkg/repository"
)

const defaultHistoryRetention = 30 * 24 * time.Hour

// CleanupStats reports what one maintenance pass removed.
type CleanupStats struct {
	RemovedImages    int `json:"removed_images"`
	RemovedExchanges int `json:"removed_exchanges"`
}

// CleanupService expires old temp images and prunes stale exchange history.
type CleanupService struct {
	images    *ImageService
	repo      repository.Repository
	retention time.Duration
}

// NewCleanupService creates a new CleanupService
func NewCleanupService(images *ImageService, repo repository.Repository) *CleanupService {
	return &CleanupService{
		images:    images,
		repo:      repo,
		retention: defaultHistoryRetention,
	}
}

// SetRetention overrides how long exchange history is kept.
func (s *CleanupService) SetRetention(retention time.Duration) {
	s.retention = retention
}

// Run performs one cleanup pass over temp images and exchange history.
func (s *CleanupService) Run() (*CleanupStats, error) {
	stats := &CleanupStats{}

	removedImages, err := s.images.CleanupTempImages()
	if err != nil {
		return nil, fmt.Errorf("cleaning temp images: %w", err)
	}
	stats.RemovedImages = removedImages

	removedExchanges, err := s.repo.DeleteExchangesBefore(time.Now().Add(-s.retention))
	if err != nil {
		return nil, fmt.Errorf("pruning exchange history: %w", err)
	}
	stats.RemovedExchanges = removedExchanges

	log.WithFields(log.Fields{
		"removed_images":    stats.RemovedImages,
		"removed_exchanges": stats.RemovedExchanges,
	}).Info("Cleanup pass completed")

	return stats, nil
}
