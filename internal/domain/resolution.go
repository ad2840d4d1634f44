package domain

import "time"

// StatusResolution is the record of one status request reaching consensus.
// EventID makes projections of it idempotent under redelivery.
type StatusResolution struct {
	EventID    string
	Index      uint8
	Flight     FlightKey
	Outcome    FlightStatus
	Reporters  int
	ResolvedAt time.Time
}
