package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mergeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfmerge_merge_jobs_total",
			Help: "Total number of merge jobs",
		},
		[]string{"status"},
	)

	mergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfmerge_merge_duration_seconds",
			Help:    "Merge job duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
	)

	mergePages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfmerge_merge_pages",
			Help:    "Number of pages written per merge",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	mergeInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfmerge_merge_in_flight",
			Help: "Number of merge jobs currently running",
		},
	)
)
