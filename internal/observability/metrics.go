package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	searchesTotal         *prometheus.CounterVec
	searchResults         *prometheus.HistogramVec
	analyticsCacheLookups *prometheus.CounterVec
	importRejectedTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduquery_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eduquery_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduquery_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		searchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduquery_searches_total",
			Help: "Searches executed, by kind.",
		}, []string{"kind"})

		searchResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eduquery_search_results",
			Help:    "Number of rows returned per search.",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 250},
		}, []string{"kind"})

		analyticsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduquery_analytics_cache_lookups_total",
			Help: "Analytics cache lookups, by panel and outcome.",
		}, []string{"panel", "outcome"})

		importRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eduquery_import_rejected_total",
			Help: "School imports rejected, by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			searchesTotal,
			searchResults,
			analyticsCacheLookups,
			importRejectedTotal,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Searches counts executed searches labelled by kind (name, subjects, advanced, ...).
func Searches() *prometheus.CounterVec {
	RegisterMetrics()
	return searchesTotal
}

// SearchResults observes result set sizes labelled by kind.
func SearchResults() *prometheus.HistogramVec {
	RegisterMetrics()
	return searchResults
}

// AnalyticsCacheLookups counts cache hits and misses per analytics panel.
func AnalyticsCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheLookups
}

// ImportRejected counts rejected CSV imports.
func ImportRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return importRejectedTotal
}
