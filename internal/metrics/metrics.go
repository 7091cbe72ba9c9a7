// Package metrics holds the Prometheus collectors of the planning service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_plans_generated_total",
		Help: "Itinerary generation runs by optimization mode and outcome",
	}, []string{"mode", "outcome"})

	planDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itinerary_plan_duration_seconds",
		Help:    "Wall time of one itinerary generation run",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"mode"})

	unoptimizedDays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itinerary_unoptimized_days_total",
		Help: "Itinerary days that fell back to the unoptimized listing",
	})

	nodesExplored = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itinerary_route_nodes_explored",
		Help:    "Graph nodes popped per route search",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 1000, 10000},
	}, []string{"kind"})

	rulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_rules_fired_total",
		Help: "Inference rules fired by rule id",
	}, []string{"rule"})

	poolInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itinerary_pool_in_flight",
		Help: "Planning runs currently holding a worker slot",
	})

	poolTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itinerary_pool_timeouts_total",
		Help: "Planning runs whose result was discarded after the deadline",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itinerary_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// PlanGenerated records one finished generation run. outcome is "ok" or an
// error class.
func PlanGenerated(mode, outcome string, took time.Duration) {
	plansGenerated.WithLabelValues(mode, outcome).Inc()
	planDuration.WithLabelValues(mode).Observe(took.Seconds())
}

// UnoptimizedDays adds days that used the fallback listing.
func UnoptimizedDays(n int) {
	if n > 0 {
		unoptimizedDays.Add(float64(n))
	}
}

// NodesExplored records the search effort of one route. kind is "path" or
// "multistop".
func NodesExplored(kind string, n int) {
	nodesExplored.WithLabelValues(kind).Observe(float64(n))
}

// RulesFired counts each fired rule id.
func RulesFired(ids []string) {
	for _, id := range ids {
		rulesFired.WithLabelValues(id).Inc()
	}
}

// PoolAcquired and PoolReleased track worker slot usage.
func PoolAcquired() { poolInFlight.Inc() }

func PoolReleased() { poolInFlight.Dec() }

// PoolTimeout counts a run abandoned at its deadline.
func PoolTimeout() { poolTimeouts.Inc() }

// HTTPRequest records one served request.
func HTTPRequest(method, route, status string, took time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpLatency.WithLabelValues(method, route).Observe(took.Seconds())
}
