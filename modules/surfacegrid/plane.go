package surfacegrid

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/hagall-common/messages/hagallpb"
	"github.com/go-gl/mathgl/mgl64"
)

// Plane is a finite rectangle in world space. Bounds are measured along Right
// (width) and Up (height) and Position is the rectangle center.
type Plane struct {
	Position mgl64.Vec3
	Right    mgl64.Vec3
	Up       mgl64.Vec3
	Bounds   mgl64.Vec2
}

// NewPlane returns a plane whose right and up axes are the local X and Y axes
// of the given rotation.
func NewPlane(position mgl64.Vec3, rotation mgl64.Quat, bounds mgl64.Vec2) Plane {
	rotation = rotation.Normalize()

	return Plane{
		Position: position,
		Right:    rotation.Rotate(mgl64.Vec3{1, 0, 0}),
		Up:       rotation.Rotate(mgl64.Vec3{0, 1, 0}),
		Bounds:   bounds,
	}
}

func (p Plane) Width() float64 {
	return p.Bounds.X()
}

func (p Plane) Height() float64 {
	return p.Bounds.Y()
}

// Validate reports whether the plane can be sampled.
func (p Plane) Validate() error {
	for _, v := range []float64{
		p.Position.X(), p.Position.Y(), p.Position.Z(),
		p.Right.X(), p.Right.Y(), p.Right.Z(),
		p.Up.X(), p.Up.Y(), p.Up.Z(),
		p.Bounds.X(), p.Bounds.Y(),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("plane has non-finite components").
				WithType(ErrTypeInvalidInput)
		}
	}

	if p.Bounds.X() < 0 || p.Bounds.Y() < 0 {
		return errors.New("plane bounds are negative").
			WithType(ErrTypeInvalidInput).
			WithTag("width", p.Bounds.X()).
			WithTag("height", p.Bounds.Y())
	}

	if p.Right.Len() < epsilon || p.Up.Len() < epsilon {
		return errors.New("plane axis has zero length").
			WithType(ErrTypeInvalidInput)
	}

	if p.Right.Normalize().Cross(p.Up.Normalize()).Len() < epsilon {
		return errors.New("plane axes are parallel").
			WithType(ErrTypeInvalidInput)
	}
	return nil
}

// normalized returns a copy of the plane with unit length axes. It must only
// be called on a validated plane.
func (p Plane) normalized() Plane {
	p.Right = p.Right.Normalize()
	p.Up = p.Up.Normalize()
	return p
}

// bottomLeft returns the corner of the plane at its minimum right and up
// coordinates.
func (p Plane) bottomLeft() mgl64.Vec3 {
	return p.Position.
		Sub(p.Right.Mul(p.Width() * 0.5)).
		Sub(p.Up.Mul(p.Height() * 0.5))
}

// RoomSurfaces describes the planes that bound one enclosed volume. Nil
// planes are skipped.
type RoomSurfaces struct {
	Walls   []*Plane
	Ceiling *Plane
	Floor   *Plane
}

// Surface identifies which part of a room a plane belongs to.
type Surface string

const (
	SurfaceWall         Surface = "wall"
	SurfaceCeiling      Surface = "ceiling"
	SurfaceFloor        Surface = "floor"
	SurfaceIntermediate Surface = "intermediate"
)

// Pose is a sample location. Its rotation local Z axis is the normal of the
// plane the sample was taken from.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat

	// Uniform scale, always 1. Kept for consumers that render samples.
	Scale float64
}

func (p Pose) ToProtobuf() *hagallpb.Pose {
	return &hagallpb.Pose{
		Px: float32(p.Position.X()),
		Py: float32(p.Position.Y()),
		Pz: float32(p.Position.Z()),
		Rx: float32(p.Rotation.X()),
		Ry: float32(p.Rotation.Y()),
		Rz: float32(p.Rotation.Z()),
		Rw: float32(p.Rotation.W),
	}
}

// SampleSet is an ordered list of poses: plane order first, then row-major
// within each plane.
type SampleSet []Pose

func (s SampleSet) ToProtobuf() []*hagallpb.Pose {
	poses := make([]*hagallpb.Pose, len(s))
	for i, p := range s {
		poses[i] = p.ToProtobuf()
	}
	return poses
}
