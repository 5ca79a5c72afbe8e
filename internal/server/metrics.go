package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfmerge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	mergeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_merge_requests_total",
			Help: "Total number of merge requests by surface and outcome",
		},
		[]string{"surface", "status"}, // surface: http, websocket
	)

	previewRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_preview_renders_total",
			Help: "Total number of rendered preview pages",
		},
		[]string{"status"},
	)

	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, data
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfmerge_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024, 100 * 1024 * 1024},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfmerge_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
