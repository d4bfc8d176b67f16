package metrics

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// all metrics and middlewares for the REST API and the federation services
var (
	// to prevent metrics from being initialized multiple times
	isMetricsInitVar uint32 = 0

	// active REST API connections
	activeRESTConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_rest_connections",
			Help: "Number of active REST API connections",
		},
	)

	// response times for REST APIs
	responseTimeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_time_milliseconds",
			Help:    "REST API response time distributions",
			Buckets: []float64{1, 10, 50, 100, 200, 300, 400, 500},
		},
		[]string{"method", "endpoint"},
	)

	// Number of requests processed by REST API
	RESTRequestMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_requests_processed_total",
		Help: "The total number of processed REST requests",
	}, []string{"method", "endpoint"})

	// Outcome of well-known document lookups (shim, fetched, proxy_idp, not_primary, malformed, timeout, error)
	WellKnownLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wellknown_lookups_total",
		Help: "The total number of well-known discovery lookups by outcome",
	}, []string{"outcome"})

	// Result of assertion verifications (ok or the failure kind)
	AssertionVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assertion_verifications_total",
		Help: "The total number of assertion verifications by result",
	}, []string{"result"})

	// Account states returned by address info
	AddressInfoStatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "address_info_states_total",
		Help: "The total number of address info responses by account state",
	}, []string{"state"})

	// Latency of a full well-known resolution (including delegation hops)
	WellKnownResolveLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wellknown_resolve_latency_milliseconds",
		Help:    "Latency of well-known resolution",
		Buckets: prometheus.LinearBuckets(1, 100, 10),
	})
)

func setIsMetricsInit() {
	atomic.StoreUint32(&isMetricsInitVar, 1)
}

func isMetricsInit() bool {
	return atomic.LoadUint32(&isMetricsInitVar) == 1
}

func InitMetrics() {
	if !isMetricsInit() {
		setIsMetricsInit()

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(activeRESTConnections)
		prometheus.MustRegister(responseTimeRESTAPI)
		prometheus.MustRegister(RESTRequestMetricsTotal)
		prometheus.MustRegister(WellKnownLookupsTotal)
		prometheus.MustRegister(AssertionVerificationsTotal)
		prometheus.MustRegister(AddressInfoStatesTotal)
		prometheus.MustRegister(WellKnownResolveLatency)
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Increment the counter for the given endpoint:
		RESTRequestMetricsTotal.WithLabelValues(c.Request.Method, c.FullPath()).Inc()

		// Start timing responseTime histogram
		start := time.Now()

		// Set activeConnections gauge
		activeRESTConnections.Inc()
		defer activeRESTConnections.Dec()

		c.Next()

		// Set responseTime histogram
		latency := time.Since(start)
		responseTimeRESTAPI.WithLabelValues(c.Request.Method, c.FullPath()).Observe(float64(latency.Milliseconds()))
	}
}
