// Package interfaces exposes the aggregated dataset over HTTP.
package interfaces

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/store"
)

// DatasetBuilder runs the aggregation pipeline and produces a fresh dataset.
type DatasetBuilder interface {
	Run(ctx context.Context) (*domain.Dataset, error)
}

// FestivalService mediates between the HTTP handlers, the pipeline and the
// snapshot store. Reads never trigger a rebuild; refresh is explicit.
type FestivalService struct {
	store   store.DatasetStore
	builder DatasetBuilder
	group   singleflight.Group
	logger  *slog.Logger
}

func NewFestivalService(datasetStore store.DatasetStore, builder DatasetBuilder) *FestivalService {
	return &FestivalService{
		store:   datasetStore,
		builder: builder,
		logger:  slog.Default().With("component", "festival-service"),
	}
}

// GetDataset returns the last published snapshot. When no refresh has
// completed yet it returns domain.ErrDatasetNotFound rather than building
// one inline; request latency must not absorb a full pipeline run.
func (s *FestivalService) GetDataset(ctx context.Context) (*domain.Dataset, error) {
	return s.store.Load(ctx)
}

// GetFestival finds one festival by its slug in the current snapshot.
func (s *FestivalService) GetFestival(ctx context.Context, slug string) (*domain.Festival, error) {
	dataset, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range dataset.Festivals {
		if dataset.Festivals[i].Slug == slug {
			return &dataset.Festivals[i], nil
		}
	}

	return nil, domain.ErrFestivalNotFound
}

// Refresh rebuilds the dataset and publishes it. Concurrent callers share
// one run. A failed run leaves the previous snapshot untouched.
func (s *FestivalService) Refresh(ctx context.Context) (*domain.Dataset, error) {
	result, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		dataset, err := s.builder.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("pipeline run failed: %w", err)
		}

		if err := s.store.Save(ctx, dataset); err != nil {
			return nil, fmt.Errorf("failed to publish dataset: %w", err)
		}

		return dataset, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.logger.Debug("refresh shared with concurrent caller")
	}

	return result.(*domain.Dataset), nil
}
