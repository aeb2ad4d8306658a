package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quickride"

var (
	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ride_transitions_total", Help: "Ride lifecycle transitions by resulting status"},
		[]string{"status"},
	)

	RealtimeDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "realtime_deliveries_total", Help: "Realtime frames addressed to a connection"},
		[]string{"event", "outcome"},
	)
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "realtime_connections", Help: "Open realtime connections"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	MapsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "maps_requests_total", Help: "Upstream maps API calls"},
		[]string{"operation", "outcome"},
	)
	MapsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "maps_request_duration_seconds",
			Help:      "Upstream maps API latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

const (
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
	OutcomeOffline   = "offline"
)

func RecordTransition(status string) {
	RideTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordDelivery(event, outcome string) {
	RealtimeDeliveriesTotal.WithLabelValues(event, outcome).Inc()
}

// ObserveMapsCall matches the maps.Observer signature.
func ObserveMapsCall(operation string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	MapsRequestsTotal.WithLabelValues(operation, outcome).Inc()
	MapsRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
