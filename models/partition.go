package models

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/surfacegrid/modules/surfacegrid"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	ErrTypePartitionNotFound      = "partition_not_found"
	ErrTypePartitionNotLoaded     = "partition_not_loaded"
	ErrTypeMissingClass           = "missing_class"
	ErrTypeSpawnCollision         = "spawn_collision"
	ErrTypeInvalidCollisionPolicy = "invalid_collision_policy"
	ErrTypeActorNotFound          = "actor_not_found"
)

const (
	// Actors closer than this distance collide.
	collisionRadius = 1.0

	// Distance an actor is moved along its local Z axis on each adjustment.
	adjustStep = 2 * collisionRadius

	maxAdjustments = 4
)

// CollisionPolicy tells what to do when an actor is spawned where another
// actor already stands.
type CollisionPolicy string

const (
	CollisionDefault                        CollisionPolicy = "default"
	CollisionAlwaysSpawn                    CollisionPolicy = "always_spawn"
	CollisionAdjustIfPossibleButAlwaysSpawn CollisionPolicy = "adjust_if_possible_but_always_spawn"
	CollisionAdjustIfPossibleButDontSpawn   CollisionPolicy = "adjust_if_possible_but_dont_spawn_if_colliding"
	CollisionDontSpawnIfColliding           CollisionPolicy = "dont_spawn_if_colliding"
)

// ParseCollisionPolicy returns the policy named v. An empty string gives
// CollisionAdjustIfPossibleButAlwaysSpawn.
func ParseCollisionPolicy(v string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(v))); p {
	case "":
		return CollisionAdjustIfPossibleButAlwaysSpawn, nil

	case CollisionDefault,
		CollisionAlwaysSpawn,
		CollisionAdjustIfPossibleButAlwaysSpawn,
		CollisionAdjustIfPossibleButDontSpawn,
		CollisionDontSpawnIfColliding:
		return p, nil

	default:
		return "", errors.New("unknown collision policy").
			WithType(ErrTypeInvalidCollisionPolicy).
			WithTag("policy", v)
	}
}

// Actor is an object spawned into a partition.
type Actor struct {
	ID     uint32
	Handle string
	Class  string
	Pose   surfacegrid.Pose
}

// Partition is a named part of a world that is loaded on demand and that
// actors are spawned into.
type Partition struct {
	PackageName string

	mutex    sync.RWMutex
	loaded   bool
	visible  bool
	actorIDs ActorIDGenerator
	actors   []*Actor
}

// ShortName returns the package name without its path.
func (p *Partition) ShortName() string {
	return path.Base(p.PackageName)
}

func (p *Partition) IsLoaded() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.loaded
}

func (p *Partition) IsVisible() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.visible
}

func (p *Partition) Actors() []*Actor {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	actors := make([]*Actor, len(p.actors))
	copy(actors, p.actors)
	return actors
}

func (p *Partition) ActorCount() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return len(p.actors)
}

func (p *Partition) load(visible bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.loaded = true
	p.visible = p.visible || visible
}

func (p *Partition) spawn(class string, pose surfacegrid.Pose, policy CollisionPolicy) (*Actor, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.loaded {
		return nil, errors.New("partition is not loaded").
			WithType(ErrTypePartitionNotLoaded).
			WithTag("partition", p.PackageName)
	}

	switch policy {
	case CollisionAdjustIfPossibleButAlwaysSpawn:
		if adjusted, ok := p.adjust(pose); ok {
			pose = adjusted
		}

	case CollisionAdjustIfPossibleButDontSpawn:
		adjusted, ok := p.adjust(pose)
		if !ok {
			return nil, p.collisionError(class, pose)
		}
		pose = adjusted

	case CollisionDontSpawnIfColliding:
		if p.collides(pose.Position) {
			return nil, p.collisionError(class, pose)
		}
	}

	actor := &Actor{
		ID:     p.actorIDs.New(),
		Handle: uuid.NewString(),
		Class:  class,
		Pose:   pose,
	}
	p.actors = append(p.actors, actor)
	return actor, nil
}

func (p *Partition) despawn(id uint32) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i, a := range p.actors {
		if a.ID == id {
			p.actors = append(p.actors[:i], p.actors[i+1:]...)
			p.actorIDs.Release(id)
			return nil
		}
	}

	return errors.New("actor not found").
		WithType(ErrTypeActorNotFound).
		WithTag("partition", p.PackageName).
		WithTag("actor_id", id)
}

// adjust moves the pose along its local Z axis until it no longer collides.
func (p *Partition) adjust(pose surfacegrid.Pose) (surfacegrid.Pose, bool) {
	step := pose.Rotation.Rotate(mgl64.Vec3{0, 0, adjustStep})

	for i := 0; i <= maxAdjustments; i++ {
		if !p.collides(pose.Position) {
			return pose, true
		}
		pose.Position = pose.Position.Add(step)
	}
	return pose, false
}

func (p *Partition) collides(position mgl64.Vec3) bool {
	for _, a := range p.actors {
		if a.Pose.Position.Sub(position).Len() < collisionRadius {
			return true
		}
	}
	return false
}

func (p *Partition) collisionError(class string, pose surfacegrid.Pose) error {
	return errors.New("spawn location is occupied").
		WithType(ErrTypeSpawnCollision).
		WithTag("partition", p.PackageName).
		WithTag("class", class).
		WithTag("position", pose.Position)
}

// PartitionStore holds the partitions of a world.
type PartitionStore struct {
	initOnce   sync.Once
	mutex      sync.RWMutex
	partitions map[string]*Partition
}

func (s *PartitionStore) init() {
	s.partitions = make(map[string]*Partition)
}

// Register adds a partition identified by its package name, e.g.
// "/Game/Maps/Gallery". Registering a known partition returns it.
func (s *PartitionStore) Register(packageName string) *Partition {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if p, ok := s.partitions[packageName]; ok {
		return p
	}

	p := &Partition{PackageName: packageName}
	s.partitions[packageName] = p
	instrumentPartitionCount(len(s.partitions))
	return p
}

// Find returns the partition with the given package name, or failing that,
// the first partition whose short name matches.
func (s *PartitionStore) Find(name string) (*Partition, bool) {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if p, ok := s.partitions[name]; ok {
		return p, true
	}

	var match *Partition
	for _, p := range s.partitions {
		if p.ShortName() != name {
			continue
		}
		if match == nil || p.PackageName < match.PackageName {
			match = p
		}
	}
	return match, match != nil
}

// Partitions returns every registered partition.
func (s *PartitionStore) Partitions() []*Partition {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	partitions := make([]*Partition, 0, len(s.partitions))
	for _, p := range s.partitions {
		partitions = append(partitions, p)
	}
	return partitions
}

// Load makes the named partition resident, and visible if requested.
func (s *PartitionStore) Load(ctx context.Context, name string, visible bool) (*Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := s.Find(name)
	if !ok {
		return nil, errors.New("partition not found").
			WithType(ErrTypePartitionNotFound).
			WithTag("partition", name)
	}

	p.load(visible)
	instrumentPartitionLoad(p.PackageName)
	return p, nil
}

// Spawn creates an actor of the given class in a loaded partition.
func (s *PartitionStore) Spawn(class string, pose surfacegrid.Pose, name string, policy CollisionPolicy) (*Actor, error) {
	if class == "" {
		return nil, errors.New("actor class is empty").
			WithType(ErrTypeMissingClass).
			WithTag("partition", name)
	}

	p, ok := s.Find(name)
	if !ok {
		return nil, errors.New("partition not found").
			WithType(ErrTypePartitionNotFound).
			WithTag("partition", name)
	}

	actor, err := p.spawn(class, pose, policy)
	if err != nil {
		return nil, err
	}

	instrumentActorSpawn(p.PackageName, class)
	return actor, nil
}

// Despawn removes an actor from a partition. Its id can be given to a later
// spawn.
func (s *PartitionStore) Despawn(name string, id uint32) error {
	p, ok := s.Find(name)
	if !ok {
		return errors.New("partition not found").
			WithType(ErrTypePartitionNotFound).
			WithTag("partition", name)
	}

	if err := p.despawn(id); err != nil {
		return err
	}
	instrumentActorDespawn(p.PackageName)
	return nil
}
