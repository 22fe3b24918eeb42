// Package store persists the aggregated dataset between refreshes. The
// dataset is written whole; there is no per-festival mutation.
package store

import (
	"context"
	"sync"

	"github.com/yair/festival-atlas/pkg/domain"
)

// DatasetStore loads and saves the aggregated dataset. Load returns
// domain.ErrDatasetNotFound when no refresh has completed yet.
type DatasetStore interface {
	Load(ctx context.Context) (*domain.Dataset, error)
	Save(ctx context.Context, dataset *domain.Dataset) error
}

// MemoryStore keeps the dataset in process memory. It is the default
// backend; the dataset is rebuilt on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	dataset *domain.Dataset
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dataset == nil {
		return nil, domain.ErrDatasetNotFound
	}
	return s.dataset, nil
}

func (s *MemoryStore) Save(ctx context.Context, dataset *domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataset = dataset
	return nil
}
