package convert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_conversions_total",
			Help: "Total number of format conversions",
		},
		[]string{"kind", "status"}, // kind: image, word, text
	)

	conversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfmerge_conversion_duration_seconds",
			Help:    "Format conversion duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)
)
