// Package metrics provides Prometheus metrics for video generations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts finished generations by outcome
	// (succeeded, failed, quota_or_auth).
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veostudio_generations_total",
		Help: "Total number of finished video generations, by outcome.",
	}, []string{"outcome"})

	// StatusPollsTotal counts operation status fetches.
	StatusPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veostudio_status_polls_total",
		Help: "Total number of generation operation status fetches.",
	})

	VideosSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veostudio_videos_saved_total",
		Help: "Total number of generated videos written to the download directory.",
	})

	// GenerationDuration observes wall time from submit to the last saved video.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veostudio_generation_duration_seconds",
		Help:    "Duration of video generations, including status polling.",
		Buckets: []float64{5, 15, 30, 60, 120, 240, 480},
	})
)
