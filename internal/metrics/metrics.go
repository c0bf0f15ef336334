package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cargobooking"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC calls by method and status code.",
		},
		[]string{"method", "code"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Committed booking state changes by event.",
		},
		[]string{"event"},
	)

	bookingRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Booking operations rejected by reason.",
		},
		[]string{"operation", "reason"},
	)

	bookedWeight = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booked_weight_kg_total",
			Help:      "Weight placed on hold.",
		},
	)

	txRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_conflict_retries_total",
			Help:      "Transactions retried after a conflict.",
		},
	)

	flightsImported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_imported_total",
			Help:      "Flights created by source.",
		},
		[]string{"source"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			grpcRequests,
			bookingTransitions,
			bookingRejections,
			bookedWeight,
			txRetries,
			flightsImported,
		)
	})
}

func ObserveHTTP(route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncGRPC(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}

// IncTransition counts a committed booking_created / confirmed / cancelled / expired event.
func IncTransition(event string) {
	bookingTransitions.WithLabelValues(event).Inc()
}

func IncRejection(operation, reason string) {
	bookingRejections.WithLabelValues(operation, reason).Inc()
}

func AddBookedWeight(weight int) {
	bookedWeight.Add(float64(weight))
}

func IncTxRetry() {
	txRetries.Inc()
}

func AddImported(source string, n int) {
	flightsImported.WithLabelValues(source).Add(float64(n))
}
