package interfaces

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yair/festival-atlas/pkg/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	dataset *domain.Dataset
	saveErr error
	saves   int
}

func (s *fakeStore) Load(ctx context.Context) (*domain.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, domain.ErrDatasetNotFound
	}
	return s.dataset, nil
}

func (s *fakeStore) Save(ctx context.Context, dataset *domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.dataset = dataset
	return nil
}

type fakeBuilder struct {
	mu      sync.Mutex
	dataset *domain.Dataset
	err     error
	runs    int
}

func (b *fakeBuilder) Run(ctx context.Context) (*domain.Dataset, error) {
	b.mu.Lock()
	b.runs++
	b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return b.dataset, nil
}

func serviceDataset() *domain.Dataset {
	return &domain.Dataset{
		Festivals: []domain.Festival{
			{Slug: "hellfest-clisson-2026", Name: "Hellfest"},
			{Slug: "dour-dour-2026", Name: "Dour Festival"},
		},
		LastRefreshed: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		TotalCount:    2,
	}
}

func TestFestivalService(t *testing.T) {
	ctx := context.Background()

	t.Run("GetDataset before any refresh", func(t *testing.T) {
		svc := NewFestivalService(&fakeStore{}, &fakeBuilder{})

		if _, err := svc.GetDataset(ctx); !errors.Is(err, domain.ErrDatasetNotFound) {
			t.Fatalf("GetDataset = %v, want ErrDatasetNotFound", err)
		}
	})

	t.Run("GetDataset never triggers a build", func(t *testing.T) {
		builder := &fakeBuilder{dataset: serviceDataset()}
		svc := NewFestivalService(&fakeStore{}, builder)

		svc.GetDataset(ctx)
		if builder.runs != 0 {
			t.Fatalf("builder ran %d times on a read", builder.runs)
		}
	})

	t.Run("Refresh publishes the built dataset", func(t *testing.T) {
		st := &fakeStore{}
		svc := NewFestivalService(st, &fakeBuilder{dataset: serviceDataset()})

		dataset, err := svc.Refresh(ctx)
		if err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if dataset.TotalCount != 2 {
			t.Errorf("TotalCount = %d, want 2", dataset.TotalCount)
		}

		loaded, err := svc.GetDataset(ctx)
		if err != nil {
			t.Fatalf("GetDataset after refresh: %v", err)
		}
		if loaded.TotalCount != 2 {
			t.Errorf("loaded TotalCount = %d, want 2", loaded.TotalCount)
		}
	})

	t.Run("failed run keeps the previous snapshot", func(t *testing.T) {
		st := &fakeStore{dataset: serviceDataset()}
		svc := NewFestivalService(st, &fakeBuilder{err: errors.New("sources down")})

		if _, err := svc.Refresh(ctx); err == nil {
			t.Fatal("expected refresh error")
		}

		loaded, err := svc.GetDataset(ctx)
		if err != nil {
			t.Fatalf("GetDataset: %v", err)
		}
		if loaded.TotalCount != 2 {
			t.Errorf("stale snapshot lost: %+v", loaded)
		}
		if st.saves != 0 {
			t.Errorf("store saved %d times after a failed run", st.saves)
		}
	})

	t.Run("GetFestival by slug", func(t *testing.T) {
		svc := NewFestivalService(&fakeStore{dataset: serviceDataset()}, &fakeBuilder{})

		festival, err := svc.GetFestival(ctx, "dour-dour-2026")
		if err != nil {
			t.Fatalf("GetFestival: %v", err)
		}
		if festival.Name != "Dour Festival" {
			t.Errorf("Name = %q", festival.Name)
		}

		if _, err := svc.GetFestival(ctx, "nope"); !errors.Is(err, domain.ErrFestivalNotFound) {
			t.Errorf("GetFestival(nope) = %v, want ErrFestivalNotFound", err)
		}
	})
}
