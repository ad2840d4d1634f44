package domain

import "time"

type AirlineStatus string

const (
	AirlineStatusUnregistered AirlineStatus = "UNREGISTERED"
	AirlineStatusRegistered   AirlineStatus = "REGISTERED"
	AirlineStatusActive       AirlineStatus = "ACTIVE"
)

// Airline is a participant of the trusted set. Votes is only populated while the
// airline is an Unregistered candidate waiting for quorum.
type Airline struct {
	Address   string
	Name      string
	Status    AirlineStatus
	Funds     int64
	Votes     map[string]struct{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Airline) IsRegistered() bool {
	return a.Status == AirlineStatusRegistered || a.Status == AirlineStatusActive
}

func (a *Airline) IsActive() bool {
	return a.Status == AirlineStatusActive
}

// Clone returns a deep copy so callers never share the vote set.
func (a *Airline) Clone() *Airline {
	if a == nil {
		return nil
	}
	c := *a
	if a.Votes != nil {
		c.Votes = make(map[string]struct{}, len(a.Votes))
		for voter := range a.Votes {
			c.Votes[voter] = struct{}{}
		}
	}
	return &c
}
