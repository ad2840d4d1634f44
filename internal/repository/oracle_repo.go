package repository

import (
	"context"
	"sync"

	"github.com/Domenick1991/flightsurety/internal/domain"
)

type OracleRepository interface {
	Get(ctx context.Context, address string) (*domain.Oracle, error)
	Create(ctx context.Context, oracle *domain.Oracle) error
}

type RequestRepository interface {
	Get(ctx context.Context, key domain.RequestKey) (*domain.StatusRequest, error)
	Save(ctx context.Context, req *domain.StatusRequest) error
}

type MemoryOracleRepository struct {
	mu      sync.RWMutex
	oracles map[string]domain.Oracle
}

func NewOracleRepository() *MemoryOracleRepository {
	return &MemoryOracleRepository{oracles: make(map[string]domain.Oracle)}
}

func (r *MemoryOracleRepository) Get(_ context.Context, address string) (*domain.Oracle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.oracles[address]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *MemoryOracleRepository) Create(_ context.Context, oracle *domain.Oracle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.oracles[oracle.Address]; ok {
		return domain.ErrAlreadyRegistered
	}
	r.oracles[oracle.Address] = *oracle
	return nil
}

type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[domain.RequestKey]*domain.StatusRequest
}

func NewRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{requests: make(map[domain.RequestKey]*domain.StatusRequest)}
}

func (r *MemoryRequestRepository) Get(_ context.Context, key domain.RequestKey) (*domain.StatusRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return req.Clone(), nil
}

func (r *MemoryRequestRepository) Save(_ context.Context, req *domain.StatusRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.Key] = req.Clone()
	return nil
}

var (
	_ OracleRepository  = (*MemoryOracleRepository)(nil)
	_ RequestRepository = (*MemoryRequestRepository)(nil)
)
