// Package metrics holds the Prometheus instruments of the registries. A nil
// *Metrics is valid and records nothing, which keeps tests free of registries.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "flightsurety"

type Metrics struct {
	airlineVotes      prometheus.Counter
	airlinesAdmitted  prometheus.Counter
	airlinesFunded    prometheus.Counter
	oraclesRegistered prometheus.Counter
	requestsOpened    prometheus.Counter
	requestsResolved  *prometheus.CounterVec
	oracleResponses   *prometheus.CounterVec
	flightsRegistered prometheus.Counter
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		airlineVotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "airline_votes_total",
			Help: "Admission votes recorded for airline candidates.",
		}),
		airlinesAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "airlines_admitted_total",
			Help: "Airlines transitioned to registered.",
		}),
		airlinesFunded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "airlines_funded_total",
			Help: "Airlines transitioned to active.",
		}),
		oraclesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "oracles_registered_total",
			Help: "Oracles registered.",
		}),
		requestsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "status_requests_opened_total",
			Help: "Flight status requests opened.",
		}),
		requestsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "status_requests_resolved_total",
			Help: "Flight status requests resolved, by outcome.",
		}, []string{"status"}),
		oracleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "oracle_responses_total",
			Help: "Oracle responses, by outcome.",
		}, []string{"outcome"}),
		flightsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "flights_registered_total",
			Help: "Flights registered.",
		}),
	}

	collectors := []prometheus.Collector{
		m.airlineVotes, m.airlinesAdmitted, m.airlinesFunded, m.oraclesRegistered,
		m.requestsOpened, m.requestsResolved, m.oracleResponses, m.flightsRegistered,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) AirlineVote() {
	if m != nil {
		m.airlineVotes.Inc()
	}
}

func (m *Metrics) AirlineAdmitted() {
	if m != nil {
		m.airlinesAdmitted.Inc()
	}
}

func (m *Metrics) AirlineFunded() {
	if m != nil {
		m.airlinesFunded.Inc()
	}
}

func (m *Metrics) OracleRegistered() {
	if m != nil {
		m.oraclesRegistered.Inc()
	}
}

func (m *Metrics) RequestOpened() {
	if m != nil {
		m.requestsOpened.Inc()
	}
}

func (m *Metrics) RequestResolved(status string) {
	if m != nil {
		m.requestsResolved.WithLabelValues(status).Inc()
	}
}

// OracleResponse outcome is one of "recorded", "resolved", "late" or "rejected".
func (m *Metrics) OracleResponse(outcome string) {
	if m != nil {
		m.oracleResponses.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) FlightRegistered() {
	if m != nil {
		m.flightsRegistered.Inc()
	}
}
