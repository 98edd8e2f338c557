package surfacegrid

import (
	"math/rand/v2"
	"time"
)

// Options configures a surface grid computation.
type Options struct {
	// The maximum number of returned samples. 0 or less keeps every sample.
	MaxPointCount int

	// Sample density along the plane right and up axes, in points per meter.
	DensityX float64
	DensityY float64

	// The number of length units in a meter.
	ScaleFactor float64

	// Points sample orientations against the plane normal.
	FlipNormals bool

	// Fraction of a plane's stride under which samples from neighbouring
	// planes are merged. 0 disables merging.
	MergeTolerance float64

	// The number of horizontal planes synthesized between floor and ceiling.
	IntermediatePlanes int

	// Upper bounds on the work of one call. 0 or less uses
	// DefaultMaxSamplesPerPlane and DefaultMaxIntermediatePlanes.
	MaxSamplesPerPlane    int
	MaxIntermediatePlanes int

	// The random source used for decimation. Nil uses a call-local source.
	Rand *rand.Rand
}

// Grid is the result of ComputeSurfaceGrid.
type Grid struct {
	Samples SampleSet
	Skipped []SkippedPlane

	// The number of samples before decimation.
	Generated int
}

// ComputeSurfaceGrid samples every plane of a room and reduces the result to
// at most opts.MaxPointCount samples.
func ComputeSurfaceGrid(surfaces RoomSurfaces, opts Options) (Grid, error) {
	start := time.Now()
	defer instrumentComputeLatency(start)

	planes, skipped, err := samplePlanes(surfaces, opts)
	if err != nil {
		instrumentComputeError(err)
		return Grid{}, err
	}

	samples := mergeSharedEdges(planes, opts.MergeTolerance)

	return Grid{
		Samples:   Decimate(samples, opts.MaxPointCount, opts.Rand),
		Skipped:   skipped,
		Generated: len(samples),
	}, nil
}

func (o Options) maxSamplesPerPlane() int {
	if o.MaxSamplesPerPlane <= 0 {
		return DefaultMaxSamplesPerPlane
	}
	return o.MaxSamplesPerPlane
}

func (o Options) maxIntermediatePlanes() int {
	if o.MaxIntermediatePlanes <= 0 {
		return DefaultMaxIntermediatePlanes
	}
	return o.MaxIntermediatePlanes
}
