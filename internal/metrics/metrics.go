// Package metrics holds the Prometheus collectors shared by middleware and services.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pagecraft"

var (
	once sync.Once

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ContentSubmissions *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	UploadedBytes      *prometheus.CounterVec
	ShortLinkRedirects prometheus.Counter
	RateLimited        *prometheus.CounterVec
)

// Init registers the collectors with the default registry. It is safe to
// call more than once.
func Init() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"})

		HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})

		ContentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "submissions_total",
			Help:      "Content submissions by outcome",
		}, []string{"operation", "result"})

		ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "validation_failures_total",
			Help:      "Rejected field values by section kind",
		}, []string{"kind"})

		UploadedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "bytes_total",
			Help:      "Bytes stored for uploaded section files",
		}, []string{"kind"})

		ShortLinkRedirects = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "links",
			Name:      "redirects_total",
			Help:      "Short link redirects served",
		})

		RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"scope"})
	})
}
