package threadctl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeThreadsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "threadctl_active_threads",
		Help: "Number of threads currently tracked by the manager that have not reached a final status.",
	})
	spawnTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadctl_spawn_total",
		Help: "Total number of threads spawned (including sub-agents and resumes).",
	})
	closeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadctl_close_total",
		Help: "Total number of shutdown submissions accepted, one per thread in a cascade.",
	})
)
