package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart ledger mutation outcomes.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Applied cart ledger mutations by operation.",
	}, []string{"op"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_rejected_total",
		Help: "Rejected cart ledger mutations by reason.",
	}, []string{"reason"})
	reg.MustRegister(mutations, rejected)
	return &CartMetrics{mutations: mutations, rejected: rejected}
}

// IncMutation increments the applied-mutation counter for the named operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncRejected increments the rejected-mutation counter for the named reason.
func (c *CartMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// RealtimeMetrics records status-feed connection and event activity.
type RealtimeMetrics struct {
	reconnects *prometheus.CounterVec
	events     *prometheus.CounterVec
}

// NewRealtimeMetrics registers the realtime metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	reconnects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_connect_attempts_total",
		Help: "Status feed connection attempts by result.",
	}, []string{"result"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Inbound status feed events by type.",
	}, []string{"type"})
	reg.MustRegister(reconnects, events)
	return &RealtimeMetrics{reconnects: reconnects, events: events}
}

// IncConnect increments the connection-attempt counter for the result label.
func (r *RealtimeMetrics) IncConnect(result string) {
	if r == nil || r.reconnects == nil {
		return
	}
	r.reconnects.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncEvent increments the inbound-event counter for the event type.
func (r *RealtimeMetrics) IncEvent(eventType string) {
	if r == nil || r.events == nil {
		return
	}
	r.events.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
