package surfacegrid

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl64"
)

// OrientationBasis returns the rotation of a right-handed orthonormal frame
// whose local Z axis is the normal of the plane spanned by right and up
// (negated when flip is set) and whose local X axis is the right axis
// projected onto the plane.
func OrientationBasis(right, up mgl64.Vec3, flip bool) (mgl64.Quat, error) {
	n := right.Cross(up)
	if n.Len() < epsilon {
		return mgl64.Quat{}, errors.New("plane normal is undefined").
			WithType(ErrTypeDegenerateBasis)
	}

	n = n.Normalize()
	if flip {
		n = n.Mul(-1)
	}
	return tangentFrame(n, right, up)
}

// tangentFrame builds the frame {X, N×X, N} where X comes from the first of
// primary and fallback that is not parallel to n.
func tangentFrame(n, primary, fallback mgl64.Vec3) (mgl64.Quat, error) {
	x, ok := projectOnPlane(primary, n)
	if !ok {
		if x, ok = projectOnPlane(fallback, n); !ok {
			return mgl64.Quat{}, errors.New("no tangent axis is orthogonal to the normal").
				WithType(ErrTypeDegenerateBasis).
				WithTag("normal", n)
		}
	}

	y := n.Cross(x)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, n).Mat4()).Normalize(), nil
}

// projectOnPlane removes the n component of v and normalizes the rest.
func projectOnPlane(v, n mgl64.Vec3) (mgl64.Vec3, bool) {
	p := v.Sub(n.Mul(v.Dot(n)))
	if p.Len() < epsilon {
		return mgl64.Vec3{}, false
	}
	return p.Normalize(), true
}
