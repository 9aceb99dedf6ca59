package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Constructions counts heuristic runs by algorithm and outcome (ok, invalid, infeasible, error).
	Constructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vrp_constructions_total", Help: "Route constructions by algorithm and outcome."},
		[]string{"algorithm", "outcome"},
	)
	// ConstructionSeconds tracks wall time per successful construction.
	ConstructionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "vrp_construction_duration_seconds", Help: "Construction wall time in seconds.", Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10)},
		[]string{"algorithm"},
	)
	// SolutionDistance is the total distance of constructed solutions.
	SolutionDistance = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "vrp_solution_distance", Help: "Total route distance of constructed solutions.", Buckets: prometheus.ExponentialBuckets(10, 2, 14)},
		[]string{"algorithm"},
	)
	// SolutionVehicles is the number of routes in constructed solutions.
	SolutionVehicles = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "vrp_solution_vehicles", Help: "Vehicles used by constructed solutions.", Buckets: prometheus.ExponentialBuckets(1, 2, 10)},
		[]string{"algorithm"},
	)
	// InstanceCustomers is the customer count of solved instances.
	InstanceCustomers = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "vrp_instance_customers", Help: "Customers per solved instance.", Buckets: prometheus.ExponentialBuckets(8, 2, 12)},
	)
	// StreamSubscribers is the number of open event streams.
	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "vrp_event_stream_subscribers", Help: "Open SSE and WebSocket event streams."},
	)
)

// RegisterDefault registers every collector with Registry. Later calls are no-ops.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Constructions)
		Registry.MustRegister(ConstructionSeconds)
		Registry.MustRegister(SolutionDistance)
		Registry.MustRegister(SolutionVehicles)
		Registry.MustRegister(InstanceCustomers)
		Registry.MustRegister(StreamSubscribers)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
