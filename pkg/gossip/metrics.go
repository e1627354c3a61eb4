package gossip

import "github.com/prometheus/client_golang/prometheus"

// NewMetrics creates a Metrics instance registered on its own isolated
// registry, so multiple Driver instances (e.g. several nodes in one test
// binary) never collide over the global default registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RoundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gossip_rounds_total",
			Help: "Total number of dissemination rounds run (heartbeat or forward).",
		}),
		SendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gossip_sends_total",
			Help: "Total destination writes attempted, partitioned by outcome.",
		}, []string{"outcome"}),
		ForwardsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gossip_forwards_dropped_total",
			Help: "Total inbound messages dropped because their ttl reached zero.",
		}),
		Peers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gossip_peers",
			Help: "Known peers by status.",
		}, []string{"status"}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gossip_decode_errors_total",
			Help: "Total inbound datagrams that failed to decode.",
		}),
	}

	reg.MustRegister(m.RoundsTotal, m.SendsTotal, m.ForwardsDropped, m.Peers, m.DecodeErrors)
	return m
}

// Metrics holds the Prometheus collectors the core increments. Core
// packages depend only on this struct, never on promhttp or any HTTP
// server — exposing /metrics is ambient, process-level glue living in
// cmd/gossipd.
type Metrics struct {
	Registry *prometheus.Registry

	RoundsTotal     prometheus.Counter
	SendsTotal      *prometheus.CounterVec
	ForwardsDropped prometheus.Counter
	Peers           *prometheus.GaugeVec
	DecodeErrors    prometheus.Counter
}

func (m *Metrics) observeRound() {
	if m == nil {
		return
	}
	m.RoundsTotal.Inc()
}

func (m *Metrics) observeSend(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.SendsTotal.WithLabelValues("ok").Inc()
	} else {
		m.SendsTotal.WithLabelValues("error").Inc()
	}
}

func (m *Metrics) observeForwardDropped() {
	if m == nil {
		return
	}
	m.ForwardsDropped.Inc()
}

func (m *Metrics) observeDecodeError() {
	if m == nil {
		return
	}
	m.DecodeErrors.Inc()
}

func (m *Metrics) observePeerCounts(live, offline int) {
	if m == nil {
		return
	}
	m.Peers.WithLabelValues("online").Set(float64(live))
	m.Peers.WithLabelValues("offline").Set(float64(offline))
}
