package operational

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGate_InitiallyOperational(t *testing.T) {
	g := NewGate("owner", nil)
	assert.True(t, g.IsOperational())
	assert.NoError(t, g.Check())
}

func TestGate_OnlyAdminToggles(t *testing.T) {
	g := NewGate("owner", nil)
	ctx := context.Background()

	err := g.SetOperational(ctx, "intruder", false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, g.IsOperational())

	assert.NoError(t, g.SetOperational(ctx, "owner", false))
	assert.False(t, g.IsOperational())
	assert.ErrorIs(t, g.Check(), domain.ErrNotOperational)

	assert.NoError(t, g.SetOperational(ctx, "owner", true))
	assert.NoError(t, g.Check())
}
