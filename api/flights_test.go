package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) RegisterFlight(ctx context.Context, input flights.RegisterFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetFlight(ctx context.Context, key domain.FlightKey) (*domain.Flight, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetFlightStatus(ctx context.Context, key domain.FlightKey) (domain.FlightStatus, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.FlightStatus), args.Error(1)
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ListByAirline(ctx context.Context, airline string) ([]domain.Flight, error) {
	args := m.Called(ctx, airline)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) ListByFlight(ctx context.Context, key domain.FlightKey) ([]domain.StatusResolution, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]domain.StatusResolution), args.Error(1)
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	list := []domain.Flight{
		{Airline: "airline1", Code: "ND1309", Timestamp: 100, Status: domain.FlightStatusOnTime},
	}

	mockService.On("List", c.Request.Context()).Return(list, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []flightResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	assert.Equal(t, "ON_TIME", response[0].StatusName)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_listByAirline(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights?airline=airline1", nil)

	mockService.On("ListByAirline", c.Request.Context(), "airline1").Return([]domain.Flight{}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	mockService.AssertExpectations(t)
}

func TestFlightHandler_register(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "created", wantCode: http.StatusCreated},
		{name: "inactive airline", err: domain.ErrUnauthorized, wantCode: http.StatusForbidden},
		{name: "duplicate", err: domain.ErrAlreadyExists, wantCode: http.StatusConflict},
		{name: "paused", err: domain.ErrNotOperational, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockFlightUseCase{}
			handler := NewFlightHandler(mockService, nil)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			input := flights.RegisterFlightInput{Airline: "airline1", Code: "ND1309", Timestamp: 100}
			body, _ := json.Marshal(input)
			c.Request = httptest.NewRequest("POST", "/flights", bytes.NewReader(body))
			c.Request.Header.Set("Content-Type", "application/json")

			if tt.err != nil {
				mockService.On("RegisterFlight", c.Request.Context(), input).Return(nil, tt.err)
			} else {
				mockService.On("RegisterFlight", c.Request.Context(), input).
					Return(&domain.Flight{Airline: "airline1", Code: "ND1309", Timestamp: 100}, nil)
			}

			handler.register(c)

			assert.Equal(t, tt.wantCode, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestFlightHandler_status(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/status?airline=airline1&code=ND1309&timestamp=100", nil)

	key := domain.FlightKey{Airline: "airline1", Code: "ND1309", Timestamp: 100}
	mockService.On("GetFlight", c.Request.Context(), key).
		Return(&domain.Flight{Airline: "airline1", Code: "ND1309", Timestamp: 100, Status: domain.FlightStatusLateAirline}, nil)

	handler.status(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response flightResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, uint8(20), response.Status)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_statusMissingKey(t *testing.T) {
	handler := NewFlightHandler(&MockFlightUseCase{}, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/status?airline=airline1", nil)

	handler.status(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_listHistory(t *testing.T) {
	mockHistory := &MockHistoryReader{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockHistory)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/history?airline=airline1&code=ND1309&timestamp=100", nil)

	key := domain.FlightKey{Airline: "airline1", Code: "ND1309", Timestamp: 100}
	mockHistory.On("ListByFlight", c.Request.Context(), key).Return([]domain.StatusResolution{
		{EventID: "e1", Index: 4, Flight: key, Outcome: domain.FlightStatusLateWeather, Reporters: 3, ResolvedAt: time.Unix(200, 0)},
	}, nil)

	handler.listHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []resolutionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	assert.Equal(t, "LATE_WEATHER", response[0].StatusName)
	mockHistory.AssertExpectations(t)
}

func TestFlightHandler_historyDisabled(t *testing.T) {
	handler := NewFlightHandler(&MockFlightUseCase{}, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/history?airline=a&code=c&timestamp=1", nil)

	handler.listHistory(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
