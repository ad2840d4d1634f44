package domain

import (
	"fmt"
	"time"
)

type FlightStatus uint8

const (
	FlightStatusUnknown       FlightStatus = 0
	FlightStatusOnTime        FlightStatus = 10
	FlightStatusLateAirline   FlightStatus = 20
	FlightStatusLateWeather   FlightStatus = 30
	FlightStatusLateTechnical FlightStatus = 40
	FlightStatusLateOther     FlightStatus = 50
)

var flightStatusNames = map[FlightStatus]string{
	FlightStatusUnknown:       "UNKNOWN",
	FlightStatusOnTime:        "ON_TIME",
	FlightStatusLateAirline:   "LATE_AIRLINE",
	FlightStatusLateWeather:   "LATE_WEATHER",
	FlightStatusLateTechnical: "LATE_TECHNICAL",
	FlightStatusLateOther:     "LATE_OTHER",
}

// FlightStatuses lists the valid codes in ascending order.
func FlightStatuses() []FlightStatus {
	return []FlightStatus{
		FlightStatusUnknown,
		FlightStatusOnTime,
		FlightStatusLateAirline,
		FlightStatusLateWeather,
		FlightStatusLateTechnical,
		FlightStatusLateOther,
	}
}

func (s FlightStatus) Valid() bool {
	_, ok := flightStatusNames[s]
	return ok
}

func (s FlightStatus) String() string {
	if name, ok := flightStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", uint8(s))
}

// FlightKey identifies a flight. Timestamp is the scheduled departure in unix seconds.
type FlightKey struct {
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

func (k FlightKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Airline, k.Code, k.Timestamp)
}

type Flight struct {
	Airline   string
	Code      string
	Timestamp int64
	Status    FlightStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *Flight) Key() FlightKey {
	return FlightKey{Airline: f.Airline, Code: f.Code, Timestamp: f.Timestamp}
}
