package domain

import (
	"fmt"
	"slices"
	"time"
)

// OracleIndexCount is the number of index partitions assigned to every oracle.
const OracleIndexCount = 3

type Oracle struct {
	Address      string
	Indexes      [OracleIndexCount]uint8
	RegisteredAt time.Time
}

func (o *Oracle) HasIndex(index uint8) bool {
	return slices.Contains(o.Indexes[:], index)
}

// RequestKey identifies a status request: the flight plus the index partition
// selected for it.
type RequestKey struct {
	Index  uint8
	Flight FlightKey
}

func (k RequestKey) String() string {
	return fmt.Sprintf("%d/%s", k.Index, k.Flight)
}

// StatusRequest aggregates oracle responses for one flight until a status code
// collects enough reporters. Once Resolved it never changes again.
type StatusRequest struct {
	Key        RequestKey
	Requester  string
	Responses  map[FlightStatus]map[string]struct{}
	Votes      map[string]FlightStatus
	Resolved   bool
	Outcome    FlightStatus
	OpenedAt   time.Time
	ResolvedAt time.Time
}

func NewStatusRequest(key RequestKey, requester string, now time.Time) *StatusRequest {
	return &StatusRequest{
		Key:       key,
		Requester: requester,
		Responses: make(map[FlightStatus]map[string]struct{}),
		Votes:     make(map[string]FlightStatus),
		OpenedAt:  now,
	}
}

// Record stores the oracle's latest vote and returns the number of reporters
// now backing status.
func (r *StatusRequest) Record(oracle string, status FlightStatus) int {
	if prev, ok := r.Votes[oracle]; ok && prev != status {
		delete(r.Responses[prev], oracle)
		if len(r.Responses[prev]) == 0 {
			delete(r.Responses, prev)
		}
	}
	r.Votes[oracle] = status
	set, ok := r.Responses[status]
	if !ok {
		set = make(map[string]struct{})
		r.Responses[status] = set
	}
	set[oracle] = struct{}{}
	return len(set)
}

func (r *StatusRequest) Clone() *StatusRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Responses = make(map[FlightStatus]map[string]struct{}, len(r.Responses))
	for status, set := range r.Responses {
		cp := make(map[string]struct{}, len(set))
		for oracle := range set {
			cp[oracle] = struct{}{}
		}
		c.Responses[status] = cp
	}
	c.Votes = make(map[string]FlightStatus, len(r.Votes))
	for oracle, status := range r.Votes {
		c.Votes[oracle] = status
	}
	return &c
}
