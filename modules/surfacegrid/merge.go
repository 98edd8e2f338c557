package surfacegrid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// mergeSharedEdges drops samples that fall within the merge distance of a
// sample kept before them from another plane. A plane's merge distance is
// factor times its smallest stride; two samples merge when closer than the
// larger distance of their planes. Surviving samples keep their order.
func mergeSharedEdges(planes []planeSamples, factor float64) SampleSet {
	if factor <= 0 {
		return concat(planes)
	}

	var cellSize float64
	for _, p := range planes {
		cellSize = math.Max(cellSize, factor*p.grid.minStride())
	}
	if cellSize < epsilon {
		return concat(planes)
	}

	index := newMergeIndex(cellSize)
	var merged SampleSet
	var dropped int

	for i, p := range planes {
		tolerance := factor * p.grid.minStride()

		for _, s := range p.samples {
			if index.near(s.Position, tolerance, i) {
				dropped++
				continue
			}

			index.insert(s.Position, tolerance, i)
			merged = append(merged, s)
		}
	}

	instrumentMerged(dropped)
	return merged
}

type mergeCell struct {
	X, Y, Z int
}

type mergeEntry struct {
	position  mgl64.Vec3
	tolerance float64
	plane     int
}

// mergeIndex is a hashed uniform grid. The cell size is at least the largest
// merge distance so only the 27 cells around a point need to be searched.
type mergeIndex struct {
	cellSize float64
	cells    map[mergeCell][]mergeEntry
}

func newMergeIndex(cellSize float64) *mergeIndex {
	return &mergeIndex{
		cellSize: cellSize,
		cells:    make(map[mergeCell][]mergeEntry),
	}
}

func (m *mergeIndex) cellOf(p mgl64.Vec3) mergeCell {
	return mergeCell{
		X: int(math.Floor(p.X() / m.cellSize)),
		Y: int(math.Floor(p.Y() / m.cellSize)),
		Z: int(math.Floor(p.Z() / m.cellSize)),
	}
}

func (m *mergeIndex) insert(p mgl64.Vec3, tolerance float64, plane int) {
	c := m.cellOf(p)
	m.cells[c] = append(m.cells[c], mergeEntry{
		position:  p,
		tolerance: tolerance,
		plane:     plane,
	})
}

// near reports whether a sample of another plane lies within merge distance.
func (m *mergeIndex) near(p mgl64.Vec3, tolerance float64, plane int) bool {
	c := m.cellOf(p)

	for x := c.X - 1; x <= c.X+1; x++ {
		for y := c.Y - 1; y <= c.Y+1; y++ {
			for z := c.Z - 1; z <= c.Z+1; z++ {
				for _, e := range m.cells[mergeCell{x, y, z}] {
					if e.plane == plane {
						continue
					}
					if p.Sub(e.position).Len() <= math.Max(tolerance, e.tolerance) {
						return true
					}
				}
			}
		}
	}
	return false
}
