package surfacegrid

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

// wall returns a vertical plane facing +z, centered at center.
func wall(center mgl64.Vec3, width, height float64) *Plane {
	return &Plane{
		Position: center,
		Right:    mgl64.Vec3{1, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		Bounds:   mgl64.Vec2{width, height},
	}
}

// floor returns a horizontal plane facing +y.
func floor(center mgl64.Vec3, width, depth float64) *Plane {
	return &Plane{
		Position: center,
		Right:    mgl64.Vec3{1, 0, 0},
		Up:       mgl64.Vec3{0, 0, -1},
		Bounds:   mgl64.Vec2{width, depth},
	}
}

func requireVecEqual(t *testing.T, expected, actual mgl64.Vec3) {
	t.Helper()
	require.True(t, expected.ApproxEqualThreshold(actual, 1e-6),
		"expected %v, got %v", expected, actual)
}

// requireFrame checks that q maps the unit axes onto a right-handed
// orthonormal frame and returns that frame.
func requireFrame(t *testing.T, q mgl64.Quat) (x, y, z mgl64.Vec3) {
	t.Helper()

	x = q.Rotate(mgl64.Vec3{1, 0, 0})
	y = q.Rotate(mgl64.Vec3{0, 1, 0})
	z = q.Rotate(mgl64.Vec3{0, 0, 1})

	require.InDelta(t, 1, x.Len(), 1e-6)
	require.InDelta(t, 1, y.Len(), 1e-6)
	require.InDelta(t, 1, z.Len(), 1e-6)
	require.InDelta(t, 0, x.Dot(y), 1e-6)
	require.InDelta(t, 0, y.Dot(z), 1e-6)
	require.InDelta(t, 0, x.Dot(z), 1e-6)
	requireVecEqual(t, z, x.Cross(y))
	return x, y, z
}
