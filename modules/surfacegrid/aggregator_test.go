package surfacegrid

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{
		DensityX:    1,
		DensityY:    1,
		ScaleFactor: 100,
	}
}

func TestAggregate(t *testing.T) {
	t.Run("walls are concatenated in order", func(t *testing.T) {
		room := RoomSurfaces{
			Walls: []*Plane{
				wall(mgl64.Vec3{0, 0, 0}, 400, 300),
				wall(mgl64.Vec3{1000, 0, 0}, 400, 300),
				wall(mgl64.Vec3{2000, 0, 0}, 400, 300),
				wall(mgl64.Vec3{3000, 0, 0}, 400, 300),
			},
		}

		samples, skipped, err := Aggregate(room, defaultOptions())
		require.NoError(t, err)
		require.Empty(t, skipped)
		require.Len(t, samples, 24)

		for i, s := range samples {
			wallIndex := i / 6
			require.InDelta(t, float64(wallIndex)*1000, s.Position.X(), 200)
		}
	})

	t.Run("walls come before ceiling and floor", func(t *testing.T) {
		room := RoomSurfaces{
			Walls:   []*Plane{wall(mgl64.Vec3{0, 150, -200}, 400, 300)},
			Ceiling: floor(mgl64.Vec3{0, 300, 0}, 4, 4),
			Floor:   floor(mgl64.Vec3{0, 0, 0}, 4, 4),
		}

		samples, _, err := Aggregate(room, defaultOptions())
		require.NoError(t, err)
		require.Len(t, samples, 8)
		require.InDelta(t, -200, samples[5].Position.Z(), tolerance)
		requireVecEqual(t, mgl64.Vec3{0, 300, 0}, samples[6].Position)
		requireVecEqual(t, mgl64.Vec3{0, 0, 0}, samples[7].Position)
	})

	t.Run("nil planes are skipped silently", func(t *testing.T) {
		room := RoomSurfaces{
			Walls: []*Plane{nil, wall(mgl64.Vec3{}, 4, 3), nil},
		}

		samples, skipped, err := Aggregate(room, defaultOptions())
		require.NoError(t, err)
		require.Empty(t, skipped)
		require.Len(t, samples, 1)
	})

	t.Run("malformed planes are skipped and reported", func(t *testing.T) {
		broken := &Plane{
			Right:  mgl64.Vec3{1, 0, 0},
			Up:     mgl64.Vec3{1, 0, 0},
			Bounds: mgl64.Vec2{4, 3},
		}
		room := RoomSurfaces{
			Walls: []*Plane{wall(mgl64.Vec3{}, 4, 3), broken},
			Floor: floor(mgl64.Vec3{}, 4, 3),
		}

		samples, skipped, err := Aggregate(room, defaultOptions())
		require.NoError(t, err)
		require.Len(t, samples, 2)
		require.Len(t, skipped, 1)
		require.Equal(t, SurfaceWall, skipped[0].Surface)
		require.Equal(t, 1, skipped[0].Index)
		require.Equal(t, ErrTypeInvalidInput, errors.Type(skipped[0].Err))
	})

	t.Run("empty room yields no samples", func(t *testing.T) {
		samples, skipped, err := Aggregate(RoomSurfaces{}, defaultOptions())
		require.NoError(t, err)
		require.Empty(t, skipped)
		require.Empty(t, samples)
	})

	t.Run("invalid density fails the call", func(t *testing.T) {
		opts := defaultOptions()
		opts.DensityX = 0

		_, _, err := Aggregate(RoomSurfaces{Walls: []*Plane{wall(mgl64.Vec3{}, 4, 3)}}, opts)
		require.Error(t, err)
		require.Equal(t, ErrTypeInvalidInput, errors.Type(err))
	})
}

func TestIntermediatePlanes(t *testing.T) {
	t.Run("planes are evenly spaced between floor and ceiling", func(t *testing.T) {
		f := floor(mgl64.Vec3{0, 0, 0}, 4, 4)
		c := floor(mgl64.Vec3{0, 300, 0}, 8, 8)

		planes := IntermediatePlanes(f, c, 2)
		require.Len(t, planes, 2)
		requireVecEqual(t, mgl64.Vec3{0, 100, 0}, planes[0].Position)
		requireVecEqual(t, mgl64.Vec3{0, 200, 0}, planes[1].Position)
		require.Equal(t, f.Bounds, planes[0].Bounds)
		require.Equal(t, f.Right, planes[1].Right)
	})

	t.Run("missing ceiling yields nothing", func(t *testing.T) {
		require.Empty(t, IntermediatePlanes(floor(mgl64.Vec3{}, 1, 1), nil, 3))
	})

	t.Run("intermediate planes are sampled after the floor", func(t *testing.T) {
		opts := defaultOptions()
		opts.IntermediatePlanes = 1

		room := RoomSurfaces{
			Ceiling: floor(mgl64.Vec3{0, 300, 0}, 4, 4),
			Floor:   floor(mgl64.Vec3{0, 0, 0}, 4, 4),
		}

		samples, _, err := Aggregate(room, opts)
		require.NoError(t, err)
		require.Len(t, samples, 3)
		requireVecEqual(t, mgl64.Vec3{0, 150, 0}, samples[2].Position)
	})

	t.Run("too many intermediate planes fail the call", func(t *testing.T) {
		opts := defaultOptions()
		opts.IntermediatePlanes = 1 << 62

		room := RoomSurfaces{
			Ceiling: floor(mgl64.Vec3{0, 300, 0}, 4, 4),
			Floor:   floor(mgl64.Vec3{0, 0, 0}, 4, 4),
		}

		_, _, err := Aggregate(room, opts)
		require.Error(t, err)
		require.Equal(t, ErrTypeInvalidInput, errors.Type(err))

		opts.IntermediatePlanes = 3
		opts.MaxIntermediatePlanes = 2
		_, _, err = Aggregate(room, opts)
		require.Error(t, err)
		require.Equal(t, ErrTypeInvalidInput, errors.Type(err))

		opts.MaxIntermediatePlanes = 3
		samples, _, err := Aggregate(room, opts)
		require.NoError(t, err)
		require.Len(t, samples, 5)
	})
}

func TestAggregateSampleLimit(t *testing.T) {
	t.Run("oversized plane is skipped", func(t *testing.T) {
		opts := defaultOptions()
		opts.MaxSamplesPerPlane = 10

		room := RoomSurfaces{
			Walls: []*Plane{
				wall(mgl64.Vec3{}, 400, 300),
				wall(mgl64.Vec3{}, 1100, 600),
			},
		}

		samples, skipped, err := Aggregate(room, opts)
		require.NoError(t, err)
		require.Len(t, samples, 6)
		require.Len(t, skipped, 1)
		require.Equal(t, SurfaceWall, skipped[0].Surface)
		require.Equal(t, 1, skipped[0].Index)
		require.Equal(t, ErrTypeInvalidInput, errors.Type(skipped[0].Err))
	})

	t.Run("huge density is skipped without panicking", func(t *testing.T) {
		opts := defaultOptions()
		opts.DensityX = 1e300

		samples, skipped, err := Aggregate(RoomSurfaces{
			Walls: []*Plane{wall(mgl64.Vec3{}, 100, 100)},
		}, opts)
		require.NoError(t, err)
		require.Empty(t, samples)
		require.Len(t, skipped, 1)
	})
}
