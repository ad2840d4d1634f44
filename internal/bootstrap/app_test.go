package bootstrap

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightsurety/config"
	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Surety:  config.SuretyConfig{BootstrapAirline: "airline1", Admin: "owner"},
		Oracles: config.OraclesConfig{Count: 20},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestNewApp_InProcess(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	assert.True(t, app.Gate.IsOperational())
	assert.True(t, app.Airlines.IsRegistered(ctx, "airline1"))
	assert.False(t, app.Airlines.IsActive(ctx, "airline1"))
	assert.Len(t, app.Fleet.Oracles(), 20)

	oracle, err := app.Oracles.GetOracle(ctx, "oracle-001")
	require.NoError(t, err)
	assert.Equal(t, "oracle-001", oracle.Address)

	_, err = app.Airlines.SubmitFunding(ctx, "airline1", 10)
	require.NoError(t, err)
	_, err = app.Airlines.SubmitFunding(ctx, "airline1", 10)
	require.NoError(t, err)

	families, err := app.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "flightsurety_airlines_funded_total")
	assert.Contains(t, names, "grpc_server_handled_total")
}

func TestNewApp_BootstrapIsRegisteredNotActive(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Oracles.Count = 0

	app, err := NewApp(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Fleet)
	airline, err := app.Airlines.Get(ctx, "airline1")
	require.NoError(t, err)
	assert.Equal(t, domain.AirlineStatusRegistered, airline.Status)
}
