package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	Get(ctx context.Context, key domain.FlightKey) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus, at time.Time) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	ListByAirline(ctx context.Context, airline string) ([]domain.Flight, error)
}

type MemoryFlightRepository struct {
	mu      sync.RWMutex
	flights map[domain.FlightKey]domain.Flight
}

func NewFlightRepository() *MemoryFlightRepository {
	return &MemoryFlightRepository{flights: make(map[domain.FlightKey]domain.Flight)}
}

func (r *MemoryFlightRepository) Create(_ context.Context, flight *domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := flight.Key()
	if _, ok := r.flights[key]; ok {
		return domain.ErrAlreadyExists
	}
	r.flights[key] = *flight
	return nil
}

func (r *MemoryFlightRepository) Get(_ context.Context, key domain.FlightKey) (*domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flights[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (r *MemoryFlightRepository) UpdateStatus(_ context.Context, key domain.FlightKey, status domain.FlightStatus, at time.Time) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = at
	r.flights[key] = f
	return &f, nil
}

func (r *MemoryFlightRepository) List(_ context.Context) ([]domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(domain.Flight) bool { return true }), nil
}

func (r *MemoryFlightRepository) ListByAirline(_ context.Context, airline string) ([]domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(f domain.Flight) bool { return f.Airline == airline }), nil
}

// collect must be called with r.mu held.
func (r *MemoryFlightRepository) collect(keep func(domain.Flight) bool) []domain.Flight {
	flights := make([]domain.Flight, 0)
	for _, f := range r.flights {
		if keep(f) {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		a, b := flights[i], flights[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.Airline != b.Airline {
			return a.Airline < b.Airline
		}
		return a.Code < b.Code
	})
	return flights
}

var _ FlightRepository = (*MemoryFlightRepository)(nil)
