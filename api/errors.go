package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientFee):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotOperational):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// flightQuery is the flight key carried in the query string.
type flightQuery struct {
	Airline   string `form:"airline" binding:"required"`
	Code      string `form:"code" binding:"required"`
	Timestamp int64  `form:"timestamp" binding:"required"`
}

func (q flightQuery) key() domain.FlightKey {
	return domain.FlightKey{Airline: q.Airline, Code: q.Code, Timestamp: q.Timestamp}
}
