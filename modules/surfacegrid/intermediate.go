package surfacegrid

import "github.com/aukilabs/go-tooling/pkg/errors"

// DefaultMaxIntermediatePlanes bounds the synthesized planes when
// Options.MaxIntermediatePlanes is not set.
const DefaultMaxIntermediatePlanes = 32

// IntermediatePlanes returns n horizontal planes evenly spaced between the
// floor and the ceiling, lowest first. They share the floor's axes and
// bounds. Nothing is returned unless both floor and ceiling are present.
func IntermediatePlanes(floor, ceiling *Plane, n int) []Plane {
	if floor == nil || ceiling == nil || n <= 0 {
		return nil
	}

	delta := ceiling.Position.Sub(floor.Position)
	planes := make([]Plane, n)

	for k := 1; k <= n; k++ {
		p := *floor
		p.Position = floor.Position.Add(delta.Mul(float64(k) / float64(n+1)))
		planes[k-1] = p
	}
	return planes
}

func validateIntermediateCount(n, limit int) error {
	if n > limit {
		return errors.New("too many intermediate planes").
			WithType(ErrTypeInvalidInput).
			WithTag("intermediate_planes", n).
			WithTag("max_intermediate_planes", limit)
	}
	return nil
}
