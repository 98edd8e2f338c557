package scatter

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel   = "error_type"
	partitionLabel = "partition"
)

var (
	scatterJobsQueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_jobs_queued",
		Help: "The number of queued scatter jobs.",
	}, []string{
		partitionLabel,
	})

	scatterSpawns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_spawns",
		Help: "The number of actors spawned by scatter jobs.",
	}, []string{
		partitionLabel,
	})

	scatterSpawnError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_spawn_errors",
		Help: "The errors that occured while spawning an actor.",
	}, []string{
		partitionLabel,
		errTypeLabel,
	})

	scatterJobLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "scatter_job_latency",
		Help: "The time to process a scatter job.",
	}, []string{
		partitionLabel,
	})
)

func instrumentQueuedJob(partition string) {
	scatterJobsQueued.With(prometheus.Labels{
		partitionLabel: partition,
	}).Inc()
}

func instrumentJobLatency(partition string, start time.Time) {
	scatterJobLatency.With(prometheus.Labels{
		partitionLabel: partition,
	}).Observe(time.Since(start).Seconds())
}

func instrumentSpawn(partition string) {
	scatterSpawns.With(prometheus.Labels{
		partitionLabel: partition,
	}).Inc()
}

func instrumentSpawnError(partition string, err error) {
	scatterSpawnError.
		With(prometheus.Labels{
			partitionLabel: partition,
			errTypeLabel:   errors.Type(err),
		}).
		Inc()
}
