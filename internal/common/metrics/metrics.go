// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PartnerRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_refresh_total",
			Help: "Total number of partner refreshes by outcome",
		},
		[]string{"status"},
	)

	PartnerRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partner_refresh_duration_seconds",
			Help:    "Duration of partner webhook fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	PartnersLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "partners_loaded",
			Help: "Number of partner records held per view",
		},
		[]string{"view"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	MFACodesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mfa_codes_issued_total",
			Help: "MFA code requests by outcome",
		},
		[]string{"outcome"},
	)
)
