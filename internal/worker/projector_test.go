package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Record(ctx context.Context, res domain.StatusResolution) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

const eventJSON = `{"id":"e1","index":4,"airline":"airline1","flight":"ND1309","timestamp":100,"status":20,"status_name":"LATE_AIRLINE","reporters":3,"resolved_at":"2024-01-01T00:00:00Z"}`

func TestProjector_Handle(t *testing.T) {
	ctx := context.Background()
	history := new(MockHistory)
	cache := new(MockInvalidator)

	want := domain.StatusResolution{
		EventID:    "e1",
		Index:      4,
		Flight:     domain.FlightKey{Airline: "airline1", Code: "ND1309", Timestamp: 100},
		Outcome:    domain.FlightStatusLateAirline,
		Reporters:  3,
		ResolvedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	history.On("Record", ctx, want).Return(nil)
	cache.On("InvalidateFlights", ctx).Return(errors.New("redis down"))

	err := NewProjector(history, cache, nil).Handle(ctx, kafkago.Message{Value: []byte(eventJSON)})

	assert.NoError(t, err)
	history.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestProjector_SkipsBadMessages(t *testing.T) {
	history := new(MockHistory)

	err := NewProjector(history, nil, nil).Handle(context.Background(), kafkago.Message{Value: []byte("{")})

	assert.NoError(t, err)
	history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestProjector_StorageErrorStops(t *testing.T) {
	history := new(MockHistory)
	history.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := NewProjector(history, nil, nil).Handle(context.Background(), kafkago.Message{Value: []byte(eventJSON)})

	assert.Error(t, err)
}
