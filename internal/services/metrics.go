package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRunsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecheck",
		Name:      "runs_started_total",
		Help:      "Browser scenarios and API checks started.",
	}, []string{"kind"})
	metricRunsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecheck",
		Name:      "runs_finished_total",
		Help:      "Finished runs by kind and final status.",
	}, []string{"kind", "status"})
	metricRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sitecheck",
		Name:      "run_duration_seconds",
		Help:      "Wall time of finished runs.",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"kind"})
)
