package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type HistoryReader interface {
	ListByFlight(ctx context.Context, key domain.FlightKey) ([]domain.StatusResolution, error)
}

type FlightHandler struct {
	service flights.FlightUseCase
	history HistoryReader
}

type registerFlightRequest struct {
	Airline   string `json:"airline" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Timestamp int64  `json:"timestamp" binding:"required"`
}

type flightResponse struct {
	Airline    string `json:"airline"`
	Code       string `json:"code"`
	Timestamp  int64  `json:"timestamp"`
	Status     uint8  `json:"status"`
	StatusName string `json:"status_name"`
	UpdatedAt  string `json:"updated_at"`
}

type resolutionResponse struct {
	EventID    string `json:"event_id"`
	Index      uint8  `json:"index"`
	Status     uint8  `json:"status"`
	StatusName string `json:"status_name"`
	Reporters  int    `json:"reporters"`
	ResolvedAt string `json:"resolved_at"`
}

// NewFlightHandler serves the flight registry. history may be nil, in which
// case the history route answers 404.
func NewFlightHandler(service flights.FlightUseCase, history HistoryReader) *FlightHandler {
	return &FlightHandler{service: service, history: history}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.register)
	router.GET("/status", h.status)
	router.GET("/history", h.listHistory)
}

func (h *FlightHandler) register(c *gin.Context) {
	var req registerFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.RegisterFlight(c.Request.Context(), flights.RegisterFlightInput{
		Airline:   req.Airline,
		Code:      req.Code,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) list(c *gin.Context) {
	var (
		list []domain.Flight
		err  error
	)
	if airline := c.Query("airline"); airline != "" {
		list, err = h.service.ListByAirline(c.Request.Context(), airline)
	} else {
		list, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]flightResponse, 0, len(list))
	for i := range list {
		out = append(out, toFlightResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) status(c *gin.Context) {
	var q flightQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.GetFlight(c.Request.Context(), q.key())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) listHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "status history is not enabled"})
		return
	}
	var q flightQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := h.history.ListByFlight(c.Request.Context(), q.key())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]resolutionResponse, 0, len(history))
	for _, res := range history {
		out = append(out, resolutionResponse{
			EventID:    res.EventID,
			Index:      res.Index,
			Status:     uint8(res.Outcome),
			StatusName: res.Outcome.String(),
			Reporters:  res.Reporters,
			ResolvedAt: res.ResolvedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		Airline:    f.Airline,
		Code:       f.Code,
		Timestamp:  f.Timestamp,
		Status:     uint8(f.Status),
		StatusName: f.Status.String(),
		UpdatedAt:  f.UpdatedAt.Format(time.RFC3339),
	}
}
