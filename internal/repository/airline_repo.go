package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Domenick1991/flightsurety/internal/domain"
)

type AirlineRepository interface {
	Get(ctx context.Context, address string) (*domain.Airline, error)
	Save(ctx context.Context, airline *domain.Airline) error
	List(ctx context.Context) ([]domain.Airline, error)
	CountActive(ctx context.Context) (int, error)
}

// MemoryAirlineRepository keeps airlines in process memory. Every value crossing
// its boundary is a copy.
type MemoryAirlineRepository struct {
	mu       sync.RWMutex
	airlines map[string]*domain.Airline
	active   int
}

func NewAirlineRepository() *MemoryAirlineRepository {
	return &MemoryAirlineRepository{airlines: make(map[string]*domain.Airline)}
}

func (r *MemoryAirlineRepository) Get(_ context.Context, address string) (*domain.Airline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.airlines[address]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryAirlineRepository) Save(_ context.Context, airline *domain.Airline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.airlines[airline.Address]; ok && prev.IsActive() {
		r.active--
	}
	if airline.IsActive() {
		r.active++
	}
	r.airlines[airline.Address] = airline.Clone()
	return nil
}

func (r *MemoryAirlineRepository) List(_ context.Context) ([]domain.Airline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Airline, 0, len(r.airlines))
	for _, a := range r.airlines {
		out = append(out, *a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

func (r *MemoryAirlineRepository) CountActive(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, nil
}

var _ AirlineRepository = (*MemoryAirlineRepository)(nil)
