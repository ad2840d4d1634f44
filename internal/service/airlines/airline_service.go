package airlines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/keylock"
	"github.com/Domenick1991/flightsurety/internal/metrics"
	"github.com/Domenick1991/flightsurety/internal/repository"
	"go.uber.org/zap"
)

// DefaultQuorumBootstrapSize is the number of active airlines from which
// admission switches from a single sponsor to a 50% vote.
const DefaultQuorumBootstrapSize = 5

type AirlineUseCase interface {
	RegisterAirline(ctx context.Context, input RegisterAirlineInput) (*RegistrationResult, error)
	SubmitFunding(ctx context.Context, address string, amount int64) (*domain.Airline, error)
	IsActive(ctx context.Context, address string) bool
	IsRegistered(ctx context.Context, address string) bool
	Get(ctx context.Context, address string) (*domain.Airline, error)
	List(ctx context.Context) ([]domain.Airline, error)
}

type Gate interface {
	Check() error
}

type RegisterAirlineInput struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Requester string `json:"requester"`
}

// RegistrationResult reports the state of a candidate after a registration
// call. Under quorum a call can succeed without admitting the candidate.
type RegistrationResult struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`
	Votes      int    `json:"votes"`
	Required   int    `json:"required"`
}

type AirlineService struct {
	repo          repository.AirlineRepository
	gate          Gate
	locks         *keylock.Locker
	minFunding    int64
	bootstrapSize int
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

type AirlineServiceOption func(*AirlineService)

func WithQuorumBootstrapSize(n int) AirlineServiceOption {
	return func(s *AirlineService) {
		if n > 0 {
			s.bootstrapSize = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) AirlineServiceOption {
	return func(s *AirlineService) {
		s.metrics = m
	}
}

func WithLogger(logger *zap.Logger) AirlineServiceOption {
	return func(s *AirlineService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) AirlineServiceOption {
	return func(s *AirlineService) {
		s.now = now
	}
}

func NewAirlineService(repo repository.AirlineRepository, gate Gate, minFunding int64, opts ...AirlineServiceOption) *AirlineService {
	s := &AirlineService{
		repo:          repo,
		gate:          gate,
		locks:         keylock.New(),
		minFunding:    minFunding,
		bootstrapSize: DefaultQuorumBootstrapSize,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap seeds the first airline as Registered. It still has to fund itself
// before it can act. Calling it again for an existing airline is a no-op.
func (s *AirlineService) Bootstrap(ctx context.Context, address, name string) error {
	if address == "" {
		return errors.New("bootstrap airline address is required")
	}
	unlock := s.locks.Lock(address)
	defer unlock()

	if _, err := s.repo.Get(ctx, address); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	now := s.now()
	s.logger.Info("bootstrap airline registered", zap.String("airline", address), zap.String("name", name))
	return s.repo.Save(ctx, &domain.Airline{
		Address:   address,
		Name:      name,
		Status:    domain.AirlineStatusRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *AirlineService) RegisterAirline(ctx context.Context, input RegisterAirlineInput) (*RegistrationResult, error) {
	if err := s.gate.Check(); err != nil {
		return nil, err
	}
	if input.Address == "" {
		return nil, errors.New("airline address is required")
	}
	if !s.IsActive(ctx, input.Requester) {
		return nil, fmt.Errorf("register airline %s by %s: %w", input.Address, input.Requester, domain.ErrUnauthorized)
	}

	unlock := s.locks.Lock(input.Address)
	defer unlock()

	now := s.now()
	candidate, err := s.repo.Get(ctx, input.Address)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		candidate = &domain.Airline{
			Address:   input.Address,
			Name:      input.Name,
			Status:    domain.AirlineStatusUnregistered,
			CreatedAt: now,
		}
	case err != nil:
		return nil, err
	case candidate.IsRegistered():
		return nil, fmt.Errorf("register airline %s: %w", input.Address, domain.ErrAlreadyRegistered)
	}
	if candidate.Name == "" {
		candidate.Name = input.Name
	}

	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &RegistrationResult{Address: input.Address}
	if active < s.bootstrapSize {
		result.Votes, result.Required = 1, 1
	} else {
		if candidate.Votes == nil {
			candidate.Votes = make(map[string]struct{})
		}
		if _, voted := candidate.Votes[input.Requester]; !voted {
			candidate.Votes[input.Requester] = struct{}{}
			s.metrics.AirlineVote()
		}
		result.Votes = len(candidate.Votes)
		result.Required = requiredVotes(active)
	}

	if result.Votes >= result.Required {
		candidate.Status = domain.AirlineStatusRegistered
		candidate.Votes = nil
		result.Registered = true
	}
	candidate.UpdatedAt = now

	if err := s.repo.Save(ctx, candidate); err != nil {
		return nil, err
	}

	if result.Registered {
		s.metrics.AirlineAdmitted()
		s.logger.Info("airline registered",
			zap.String("airline", input.Address),
			zap.String("sponsor", input.Requester),
			zap.Int("votes", result.Votes),
			zap.Int("active", active))
	} else {
		s.logger.Debug("airline vote recorded",
			zap.String("airline", input.Address),
			zap.String("voter", input.Requester),
			zap.Int("votes", result.Votes),
			zap.Int("required", result.Required))
	}
	return result, nil
}

func (s *AirlineService) SubmitFunding(ctx context.Context, address string, amount int64) (*domain.Airline, error) {
	if err := s.gate.Check(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(address)
	defer unlock()

	airline, err := s.repo.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fund airline %s: %w", address, err)
	}
	if airline.IsActive() {
		return airline, nil
	}
	if !airline.IsRegistered() {
		return nil, fmt.Errorf("fund airline %s: %w", address, domain.ErrUnauthorized)
	}
	if amount < s.minFunding {
		return nil, fmt.Errorf("fund airline %s with %d, minimum is %d: %w", address, amount, s.minFunding, domain.ErrInsufficientFunds)
	}

	airline.Funds += amount
	airline.Status = domain.AirlineStatusActive
	airline.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, airline); err != nil {
		return nil, err
	}

	s.metrics.AirlineFunded()
	s.logger.Info("airline activated", zap.String("airline", address), zap.Int64("amount", amount))
	return airline, nil
}

func (s *AirlineService) IsActive(ctx context.Context, address string) bool {
	a, err := s.repo.Get(ctx, address)
	return err == nil && a.IsActive()
}

func (s *AirlineService) IsRegistered(ctx context.Context, address string) bool {
	a, err := s.repo.Get(ctx, address)
	return err == nil && a.IsRegistered()
}

func (s *AirlineService) Get(ctx context.Context, address string) (*domain.Airline, error) {
	return s.repo.Get(ctx, address)
}

func (s *AirlineService) List(ctx context.Context) ([]domain.Airline, error) {
	return s.repo.List(ctx)
}

// ActiveCount returns 0 when the repository cannot be read.
func (s *AirlineService) ActiveCount(ctx context.Context) int {
	n, err := s.repo.CountActive(ctx)
	if err != nil {
		s.logger.Warn("count active airlines", zap.Error(err))
		return 0
	}
	return n
}

// requiredVotes is ceil(active/2).
func requiredVotes(active int) int {
	return (active + 1) / 2
}

var _ AirlineUseCase = (*AirlineService)(nil)
