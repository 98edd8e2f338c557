package surfacegrid

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// SkippedPlane reports a plane that could not be sampled.
type SkippedPlane struct {
	Surface Surface
	Index   int
	Err     error
}

// surfacePlane is a plane tagged with its place in the room.
type surfacePlane struct {
	surface Surface
	index   int
	plane   *Plane
}

// planeSamples holds the samples of one plane and the grid they came from.
type planeSamples struct {
	surfacePlane
	samples SampleSet
	grid    PlaneGrid
}

// Aggregate samples the walls, then the ceiling, then the floor of a room and
// concatenates the results. Planes that cannot be sampled are skipped and
// reported; invalid densities or scale, and more intermediate planes than
// allowed, fail the whole call.
func Aggregate(surfaces RoomSurfaces, opts Options) (SampleSet, []SkippedPlane, error) {
	planes, skipped, err := samplePlanes(surfaces, opts)
	if err != nil {
		return nil, nil, err
	}
	return concat(planes), skipped, nil
}

func samplePlanes(surfaces RoomSurfaces, opts Options) ([]planeSamples, []SkippedPlane, error) {
	if err := validateDensity(opts.DensityX, opts.DensityY, opts.ScaleFactor); err != nil {
		return nil, nil, err
	}

	if err := validateIntermediateCount(opts.IntermediatePlanes, opts.maxIntermediatePlanes()); err != nil {
		return nil, nil, err
	}

	var planes []planeSamples
	var skipped []SkippedPlane

	for _, sp := range includedPlanes(surfaces, opts.IntermediatePlanes) {
		samples, grid, err := samplePlane(*sp.plane,
			opts.DensityX,
			opts.DensityY,
			opts.ScaleFactor,
			opts.FlipNormals,
			opts.maxSamplesPerPlane(),
		)
		if err != nil {
			err = errors.New("sampling plane failed").
				WithType(errors.Type(err)).
				WithTag("surface", sp.surface).
				WithTag("index", sp.index).
				Wrap(err)

			logs.Warn(err)
			instrumentSkippedPlane(sp.surface, err)

			skipped = append(skipped, SkippedPlane{
				Surface: sp.surface,
				Index:   sp.index,
				Err:     err,
			})
			continue
		}

		logs.WithTag("surface", sp.surface).
			WithTag("index", sp.index).
			WithTag("count_x", grid.CountX).
			WithTag("count_y", grid.CountY).
			Debug("plane sampled")
		instrumentSamples(sp.surface, len(samples))

		planes = append(planes, planeSamples{
			surfacePlane: sp,
			samples:      samples,
			grid:         grid,
		})
	}

	return planes, skipped, nil
}

func includedPlanes(surfaces RoomSurfaces, intermediateCount int) []surfacePlane {
	planes := make([]surfacePlane, 0, len(surfaces.Walls)+2+max(intermediateCount, 0))

	for i, w := range surfaces.Walls {
		if w == nil {
			continue
		}
		planes = append(planes, surfacePlane{surface: SurfaceWall, index: i, plane: w})
	}

	if surfaces.Ceiling != nil {
		planes = append(planes, surfacePlane{surface: SurfaceCeiling, plane: surfaces.Ceiling})
	}

	if surfaces.Floor != nil {
		planes = append(planes, surfacePlane{surface: SurfaceFloor, plane: surfaces.Floor})
	}

	for i, p := range IntermediatePlanes(surfaces.Floor, surfaces.Ceiling, intermediateCount) {
		planes = append(planes, surfacePlane{surface: SurfaceIntermediate, index: i, plane: &p})
	}

	return planes
}

func concat(planes []planeSamples) SampleSet {
	n := 0
	for _, p := range planes {
		n += len(p.samples)
	}

	samples := make(SampleSet, 0, n)
	for _, p := range planes {
		samples = append(samples, p.samples...)
	}
	return samples
}
