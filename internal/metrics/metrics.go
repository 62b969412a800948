// Package metrics exposes the node's Prometheus instrumentation: RPC
// call counts and latency, routing-table and inbox size, and
// traversal hop counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the process-wide registry the node's /metrics endpoint
// serves. Tests that need isolation should build their own
// prometheus.NewRegistry() and pass it to NewCollector instead.
var Registry = prometheus.NewRegistry()

// Collector bundles every metric the node registers. A single
// Collector is shared by the server and the traversal engine for the
// life of the process. RoutingTableSize and InboxSize are registered,
// but nothing in this module sets them.
type Collector struct {
	RPCRequestsTotal   *prometheus.CounterVec
	RPCDuration        *prometheus.HistogramVec
	RoutingTableSize   *prometheus.GaugeVec
	InboxSize          prometheus.Gauge
	TraversalHopsTotal prometheus.Counter
}

// NewCollector builds and registers every metric against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests) or
// Registry to expose on the node's /metrics endpoint.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		RPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperborea",
			Name:      "rpc_requests_total",
			Help:      "Total number of RPC requests handled, by operation and status.",
		}, []string{"operation", "status"}),

		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hyperborea",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handler latency in seconds, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		RoutingTableSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hyperborea",
			Name:      "routing_table_size",
			Help:      "Number of entries in the routing table, by store.",
		}, []string{"store"}),

		InboxSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hyperborea",
			Name:      "inbox_size_total",
			Help:      "Total number of undelivered messages across all recipient inboxes.",
		}),

		TraversalHopsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperborea",
			Name:      "traversal_hops_total",
			Help:      "Total number of GET /servers hops performed by the traversal engine.",
		}),
	}

	reg.MustRegister(c.RPCRequestsTotal, c.RPCDuration, c.RoutingTableSize, c.InboxSize, c.TraversalHopsTotal)
	return c
}

// ObserveRPC records the outcome and latency of a single RPC handler
// invocation.
func (c *Collector) ObserveRPC(operation, status string, seconds float64) {
	c.RPCRequestsTotal.WithLabelValues(operation, status).Inc()
	c.RPCDuration.WithLabelValues(operation).Observe(seconds)
}
