package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"

	apperrors "github.com/itiroinazawa/image-vqa-agent/pkg/errors"
	"github.com/itiroinazawa/image-vqa-agent/pkg/models"
)

// Repository defines the interface for data access operations
type Repository interface {
	// Exchange operations
	SaveExchange(exchange *models.Exchange) error
	GetExchange(id string) (*models.Exchange, error)
	ListRecentExchanges(limit int) ([]*models.Exchange, error)
	CountExchanges() (int, error)
	DeleteExchangesBefore(cutoff time.Time) (int, error)

	// Utility operations
	Close() error
}

// BoltRepository implements Repository using BoltDB
type BoltRepository struct {
	store *bolthold.Store
}

func NewBoltRepository(store *bolthold.Store) Repository {
	return &BoltRepository{store: store}
}

func (r *BoltRepository) Store() *bolthold.Store {
	return r.store
}

func (r *BoltRepository) SaveExchange(exchange *models.Exchange) error {
	if err := r.store.Upsert(exchange.ID, exchange); err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	return nil
}

func (r *BoltRepository) GetExchange(id string) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := r.store.Get(id, &exchange); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, fmt.Errorf("exchange %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return &exchange, nil
}

// ListRecentExchanges returns up to limit exchanges, newest first.
func (r *BoltRepository) ListRecentExchanges(limit int) ([]*models.Exchange, error) {
	var exchanges []*models.Exchange
	query := bolthold.Where("CreatedAt").Le(time.Now()).
		SortBy("CreatedAt").Reverse().Limit(limit)
	if err := r.store.Find(&exchanges, query); err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

func (r *BoltRepository) CountExchanges() (int, error) {
	count, err := r.store.Count(&models.Exchange{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return count, nil
}

// DeleteExchangesBefore removes exchanges created before cutoff and returns
// how many were deleted.
func (r *BoltRepository) DeleteExchangesBefore(cutoff time.Time) (int, error) {
	count, err := r.store.Count(&models.Exchange{}, bolthold.Where("CreatedAt").Lt(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to count stale exchanges: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	if err := r.store.DeleteMatching(&models.Exchange{}, bolthold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to delete stale exchanges: %w", err)
	}
	return count, nil
}

func (r *BoltRepository) Close() error {
	if err := r.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}
