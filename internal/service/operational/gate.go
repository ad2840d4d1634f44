package operational

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"go.uber.org/zap"
)

// Gate is the administrative kill switch. While it is closed every mutating
// registry operation fails with domain.ErrNotOperational; reads keep working.
type Gate struct {
	admin       string
	operational atomic.Bool
	logger      *zap.Logger
}

func NewGate(admin string, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{admin: admin, logger: logger}
	g.operational.Store(true)
	return g
}

func (g *Gate) IsOperational() bool {
	return g.operational.Load()
}

func (g *Gate) SetOperational(_ context.Context, caller string, on bool) error {
	if caller != g.admin {
		return fmt.Errorf("set operational by %s: %w", caller, domain.ErrUnauthorized)
	}
	if g.operational.Swap(on) != on {
		g.logger.Warn("operational status changed", zap.Bool("operational", on), zap.String("caller", caller))
	}
	return nil
}

// Check returns domain.ErrNotOperational while the gate is closed.
func (g *Gate) Check() error {
	if !g.operational.Load() {
		return domain.ErrNotOperational
	}
	return nil
}
