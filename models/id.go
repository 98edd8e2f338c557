package models

import (
	"slices"
	"sync"
)

// ActorIDGenerator hands out actor ids unique within a partition. Ids of
// despawned actors are handed out again, lowest first.
type ActorIDGenerator struct {
	mutex sync.Mutex
	last  uint32
	freed []uint32
}

func (g *ActorIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if len(g.freed) != 0 {
		id := g.freed[0]
		g.freed = g.freed[1:]
		return id
	}

	g.last++
	return g.last
}

// Release makes id available to New again.
func (g *ActorIDGenerator) Release(id uint32) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if id == 0 || id > g.last {
		return
	}

	i, found := slices.BinarySearch(g.freed, id)
	if found {
		return
	}
	g.freed = slices.Insert(g.freed, i, id)
}
