package surety_service_api

import (
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
)

type Empty struct{}

type RegisterAirlineRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Requester string `json:"requester"`
}

type FundAirlineRequest struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type AddressRequest struct {
	Address string `json:"address"`
}

type Airline struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Funds     int64  `json:"funds"`
	Votes     int32  `json:"votes"`
	UpdatedAt string `json:"updated_at"`
}

type FlightRequest struct {
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

func (r *FlightRequest) key() domain.FlightKey {
	return domain.FlightKey{Airline: r.Airline, Code: r.Code, Timestamp: r.Timestamp}
}

type Flight struct {
	Airline    string `json:"airline"`
	Code       string `json:"code"`
	Timestamp  int64  `json:"timestamp"`
	Status     uint32 `json:"status"`
	StatusName string `json:"status_name"`
	UpdatedAt  string `json:"updated_at"`
}

type ListFlightsResponse struct {
	Flights []*Flight `json:"flights"`
}

type RegisterOracleRequest struct {
	Address string `json:"address"`
	Fee     int64  `json:"fee"`
}

type GetRequestRequest struct {
	Index     uint32 `json:"index"`
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

type SetOperationalRequest struct {
	Caller      string `json:"caller"`
	Operational bool   `json:"operational"`
}

type OperationalResponse struct {
	Operational bool `json:"operational"`
}

func toAirline(a *domain.Airline) *Airline {
	if a == nil {
		return nil
	}
	return &Airline{
		Address:   a.Address,
		Name:      a.Name,
		Status:    string(a.Status),
		Funds:     a.Funds,
		Votes:     int32(len(a.Votes)),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

func toFlight(f *domain.Flight) *Flight {
	if f == nil {
		return nil
	}
	return &Flight{
		Airline:    f.Airline,
		Code:       f.Code,
		Timestamp:  f.Timestamp,
		Status:     uint32(f.Status),
		StatusName: f.Status.String(),
		UpdatedAt:  f.UpdatedAt.Format(time.RFC3339),
	}
}
