package collabtools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var waitDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "threadctl_wait_duration_seconds",
	Help:    "Wall-clock time spent inside a single wait tool call, from subscribe to return.",
	Buckets: prometheus.DefBuckets,
})
