package domain

import "time"

const (
	TopicOracleRequests = "oracle.requests"
	TopicFlightStatus   = "flight.status"
)

// OracleRequestEvent asks every oracle holding Index to report the status of
// the flight. Consumers must tolerate receiving the same ID more than once.
type OracleRequestEvent struct {
	ID          string    `json:"id"`
	Index       uint8     `json:"index"`
	Airline     string    `json:"airline"`
	Flight      string    `json:"flight"`
	Timestamp   int64     `json:"timestamp"`
	RequestedAt time.Time `json:"requested_at"`
}

func (e OracleRequestEvent) FlightKey() FlightKey {
	return FlightKey{Airline: e.Airline, Code: e.Flight, Timestamp: e.Timestamp}
}

// FlightStatusEvent announces that a status request reached consensus.
type FlightStatusEvent struct {
	ID         string    `json:"id"`
	Index      uint8     `json:"index"`
	Airline    string    `json:"airline"`
	Flight     string    `json:"flight"`
	Timestamp  int64     `json:"timestamp"`
	Status     uint8     `json:"status"`
	StatusName string    `json:"status_name"`
	Reporters  int       `json:"reporters"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func (e FlightStatusEvent) Resolution() StatusResolution {
	return StatusResolution{
		EventID:    e.ID,
		Index:      e.Index,
		Flight:     FlightKey{Airline: e.Airline, Code: e.Flight, Timestamp: e.Timestamp},
		Outcome:    FlightStatus(e.Status),
		Reporters:  e.Reporters,
		ResolvedAt: e.ResolvedAt,
	}
}
