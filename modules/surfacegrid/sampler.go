package surfacegrid

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// DefaultMaxSamplesPerPlane bounds the samples of a single plane when
// Options.MaxSamplesPerPlane is not set.
const DefaultMaxSamplesPerPlane = 250000

// PointCount returns the number of samples along an axis of the given length
// for a density expressed in points per meter. scale is the number of length
// units in a meter. At least one sample is always produced. Counts that do not
// fit in an int saturate at math.MaxInt.
func PointCount(density, length, scale float64) int {
	n := axisCount(density, length, scale)
	if n >= math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

func axisCount(density, length, scale float64) float64 {
	return math.Max(1, math.Ceil(density*(length/scale))-1)
}

// PlaneGrid is the lattice laid over one plane.
type PlaneGrid struct {
	CountX  int
	CountY  int
	StrideX float64
	StrideY float64
}

// Len returns the number of samples in the grid.
func (g PlaneGrid) Len() int {
	return g.CountX * g.CountY
}

// NewPlaneGrid computes the point counts and strides of a plane. The first
// and last samples of an axis sit one stride away from the plane edges. Grids
// of more than maxSamples points are rejected.
func NewPlaneGrid(p Plane, densityX, densityY, scale float64, maxSamples int) (PlaneGrid, error) {
	countX := axisCount(densityX, p.Width(), scale)
	countY := axisCount(densityY, p.Height(), scale)

	// Float product so that oversized counts cannot wrap around.
	if countX*countY > float64(maxSamples) {
		return PlaneGrid{}, errors.New("plane needs too many samples").
			WithType(ErrTypeInvalidInput).
			WithTag("count_x", countX).
			WithTag("count_y", countY).
			WithTag("max_samples", maxSamples)
	}

	return PlaneGrid{
		CountX:  int(countX),
		CountY:  int(countY),
		StrideX: p.Width() / (countX + 1),
		StrideY: p.Height() / (countY + 1),
	}, nil
}

// SamplePlane returns the grid of poses lying inside the plane bounds, ordered
// row-major: up index in the outer loop, right index in the inner one. Planes
// needing more than DefaultMaxSamplesPerPlane samples are rejected.
func SamplePlane(p Plane, densityX, densityY, scale float64, flip bool) (SampleSet, PlaneGrid, error) {
	return samplePlane(p, densityX, densityY, scale, flip, DefaultMaxSamplesPerPlane)
}

func samplePlane(p Plane, densityX, densityY, scale float64, flip bool, maxSamples int) (SampleSet, PlaneGrid, error) {
	if err := validateDensity(densityX, densityY, scale); err != nil {
		return nil, PlaneGrid{}, err
	}

	if err := p.Validate(); err != nil {
		return nil, PlaneGrid{}, err
	}
	p = p.normalized()

	rotation, err := OrientationBasis(p.Right, p.Up, flip)
	if err != nil {
		return nil, PlaneGrid{}, err
	}

	grid, err := NewPlaneGrid(p, densityX, densityY, scale, maxSamples)
	if err != nil {
		return nil, PlaneGrid{}, err
	}
	origin := p.bottomLeft()

	samples := make(SampleSet, 0, grid.Len())
	for iy := 0; iy < grid.CountY; iy++ {
		dy := float64(iy+1) * grid.StrideY

		for ix := 0; ix < grid.CountX; ix++ {
			dx := float64(ix+1) * grid.StrideX

			samples = append(samples, Pose{
				Position: origin.Add(p.Right.Mul(dx)).Add(p.Up.Mul(dy)),
				Rotation: rotation,
				Scale:    1,
			})
		}
	}
	return samples, grid, nil
}

func validateDensity(densityX, densityY, scale float64) error {
	if !isPositive(densityX) || !isPositive(densityY) {
		return errors.New("density must be positive").
			WithType(ErrTypeInvalidInput).
			WithTag("density_x", densityX).
			WithTag("density_y", densityY)
	}

	if !isPositive(scale) {
		return errors.New("scale factor must be positive").
			WithType(ErrTypeInvalidInput).
			WithTag("scale_factor", scale)
	}
	return nil
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (g PlaneGrid) minStride() float64 {
	return math.Min(g.StrideX, g.StrideY)
}
