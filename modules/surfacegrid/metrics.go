package surfacegrid

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel = "error_type"
	surfaceLabel = "surface"
)

var (
	samplesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surfacegrid_samples_generated",
		Help: "The number of samples generated per surface kind.",
	}, []string{
		surfaceLabel,
	})

	planesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surfacegrid_planes_skipped",
		Help: "The planes that could not be sampled.",
	}, []string{
		surfaceLabel,
		errTypeLabel,
	})

	samplesMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surfacegrid_samples_merged",
		Help: "The number of samples dropped by the shared edge merge.",
	})

	samplesDecimated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surfacegrid_samples_decimated",
		Help: "The number of samples dropped by decimation.",
	})

	computeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surfacegrid_compute_errors",
		Help: "The errors that occured while computing a surface grid.",
	}, []string{
		errTypeLabel,
	})

	computeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "surfacegrid_compute_latency",
		Help: "The time to compute a surface grid.",
	})
)

func instrumentSamples(surface Surface, n int) {
	samplesGenerated.
		With(prometheus.Labels{surfaceLabel: string(surface)}).
		Add(float64(n))
}

func instrumentSkippedPlane(surface Surface, err error) {
	planesSkipped.
		With(prometheus.Labels{
			surfaceLabel: string(surface),
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}

func instrumentMerged(n int) {
	samplesMerged.Add(float64(n))
}

func instrumentDecimation(from, to int) {
	samplesDecimated.Add(float64(from - to))
}

func instrumentComputeError(err error) {
	computeErrors.
		With(prometheus.Labels{errTypeLabel: errors.Type(err)}).
		Inc()
}

func instrumentComputeLatency(start time.Time) {
	computeLatency.Observe(time.Since(start).Seconds())
}
