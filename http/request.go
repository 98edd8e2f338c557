package http

import (
	"math/rand/v2"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/surfacegrid/featureflag"
	"github.com/aukilabs/surfacegrid/modules/surfacegrid"
	"github.com/go-gl/mathgl/mgl64"
)

// GridDefaults are the sampling parameters used when a request omits them.
type GridDefaults struct {
	MaxPointCount      int
	DensityX           float64
	DensityY           float64
	ScaleFactor        float64
	FlipNormals        bool
	MergeTolerance     float64
	IntermediatePlanes int

	// Server side limits that requests cannot override.
	MaxSamplesPerPlane    int
	MaxIntermediatePlanes int
}

type planeJSON struct {
	Position [3]float64 `json:"position"`

	// Either a rotation (x, y, z, w) or a right/up axis pair.
	Rotation *[4]float64 `json:"rotation,omitempty"`
	Right    *[3]float64 `json:"right,omitempty"`
	Up       *[3]float64 `json:"up,omitempty"`

	// Width and height along the right and up axes.
	Bounds [2]float64 `json:"bounds"`
}

func (p *planeJSON) toPlane() (*surfacegrid.Plane, error) {
	if p == nil {
		return nil, nil
	}

	position := mgl64.Vec3(p.Position)
	bounds := mgl64.Vec2(p.Bounds)

	switch {
	case p.Rotation != nil:
		r := *p.Rotation
		q := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
		if q.Len() == 0 {
			return nil, errors.New("plane rotation is zero").
				WithType(surfacegrid.ErrTypeInvalidInput)
		}

		plane := surfacegrid.NewPlane(position, q, bounds)
		return &plane, nil

	case p.Right != nil && p.Up != nil:
		return &surfacegrid.Plane{
			Position: position,
			Right:    mgl64.Vec3(*p.Right),
			Up:       mgl64.Vec3(*p.Up),
			Bounds:   bounds,
		}, nil

	default:
		return nil, errors.New("plane needs a rotation or right and up axes").
			WithType(surfacegrid.ErrTypeInvalidInput)
	}
}

type gridRequest struct {
	Walls   []*planeJSON `json:"walls"`
	Ceiling *planeJSON   `json:"ceiling,omitempty"`
	Floor   *planeJSON   `json:"floor,omitempty"`

	MaxPointCount      *int     `json:"max_point_count,omitempty"`
	DensityX           *float64 `json:"density_x,omitempty"`
	DensityY           *float64 `json:"density_y,omitempty"`
	ScaleFactor        *float64 `json:"scale_factor,omitempty"`
	FlipNormals        *bool    `json:"flip_normals,omitempty"`
	Seed               *uint64  `json:"seed,omitempty"`
	MergeTolerance     *float64 `json:"merge_tolerance,omitempty"`
	IntermediatePlanes *int     `json:"intermediate_planes,omitempty"`
}

// surfaces converts the request planes. Malformed planes fail the request.
func (r gridRequest) surfaces() (surfacegrid.RoomSurfaces, error) {
	var surfaces surfacegrid.RoomSurfaces

	for i, w := range r.Walls {
		p, err := w.toPlane()
		if err != nil {
			return surfacegrid.RoomSurfaces{}, errors.New("invalid wall").
				WithType(surfacegrid.ErrTypeInvalidInput).
				WithTag("index", i).
				Wrap(err)
		}
		surfaces.Walls = append(surfaces.Walls, p)
	}

	var err error
	if surfaces.Ceiling, err = r.Ceiling.toPlane(); err != nil {
		return surfacegrid.RoomSurfaces{}, errors.New("invalid ceiling").
			WithType(surfacegrid.ErrTypeInvalidInput).
			Wrap(err)
	}

	if surfaces.Floor, err = r.Floor.toPlane(); err != nil {
		return surfacegrid.RoomSurfaces{}, errors.New("invalid floor").
			WithType(surfacegrid.ErrTypeInvalidInput).
			Wrap(err)
	}

	return surfaces, nil
}

// options merges the request parameters over the defaults. Optional modes
// are only honored when their feature flag is set.
func (r gridRequest) options(defaults GridDefaults, flags featureflag.FeatureFlag) surfacegrid.Options {
	opts := surfacegrid.Options{
		MaxPointCount: defaults.MaxPointCount,
		DensityX:      defaults.DensityX,
		DensityY:      defaults.DensityY,
		ScaleFactor:   defaults.ScaleFactor,
		FlipNormals:   defaults.FlipNormals,

		MaxSamplesPerPlane:    defaults.MaxSamplesPerPlane,
		MaxIntermediatePlanes: defaults.MaxIntermediatePlanes,
	}

	if r.MaxPointCount != nil {
		opts.MaxPointCount = *r.MaxPointCount
	}
	if r.DensityX != nil {
		opts.DensityX = *r.DensityX
	}
	if r.DensityY != nil {
		opts.DensityY = *r.DensityY
	}
	if r.ScaleFactor != nil {
		opts.ScaleFactor = *r.ScaleFactor
	}
	if r.FlipNormals != nil {
		opts.FlipNormals = *r.FlipNormals
	}
	if r.Seed != nil {
		opts.Rand = rand.New(rand.NewPCG(*r.Seed, *r.Seed))
	}

	flags.IfSet(featureflag.FlagMergeSharedEdges, func() {
		opts.MergeTolerance = defaults.MergeTolerance
		if r.MergeTolerance != nil {
			opts.MergeTolerance = *r.MergeTolerance
		}
	})

	flags.IfSet(featureflag.FlagIntermediatePlanes, func() {
		opts.IntermediatePlanes = defaults.IntermediatePlanes
		if r.IntermediatePlanes != nil {
			opts.IntermediatePlanes = *r.IntermediatePlanes
		}
	})

	return opts
}

type poseJSON struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Scale    float64    `json:"scale"`
}

func newPoseJSON(p surfacegrid.Pose) poseJSON {
	return poseJSON{
		Position: p.Position,
		Rotation: [4]float64{p.Rotation.X(), p.Rotation.Y(), p.Rotation.Z(), p.Rotation.W},
		Scale:    p.Scale,
	}
}

type skippedJSON struct {
	Surface string `json:"surface"`
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Error   string `json:"error"`
}

type gridResponse struct {
	Poses     []poseJSON    `json:"poses"`
	Generated int           `json:"generated"`
	Skipped   []skippedJSON `json:"skipped,omitempty"`
}

func newGridResponse(g surfacegrid.Grid) gridResponse {
	res := gridResponse{
		Poses:     make([]poseJSON, len(g.Samples)),
		Generated: g.Generated,
	}

	for i, s := range g.Samples {
		res.Poses[i] = newPoseJSON(s)
	}

	for _, s := range g.Skipped {
		res.Skipped = append(res.Skipped, skippedJSON{
			Surface: string(s.Surface),
			Index:   s.Index,
			Type:    errors.Type(s.Err),
			Error:   s.Err.Error(),
		})
	}
	return res
}

type errorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
