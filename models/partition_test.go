package models

import (
	"context"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/surfacegrid/modules/surfacegrid"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func poseAt(x, y, z float64) surfacegrid.Pose {
	return surfacegrid.Pose{
		Position: mgl64.Vec3{x, y, z},
		Rotation: mgl64.QuatIdent(),
		Scale:    1,
	}
}

func newLoadedStore(t *testing.T) *PartitionStore {
	s := &PartitionStore{}
	s.Register("/Game/Maps/Gallery")
	_, err := s.Load(context.Background(), "Gallery", true)
	require.NoError(t, err)
	return s
}

func TestParseCollisionPolicy(t *testing.T) {
	t.Run("empty policy gives the default", func(t *testing.T) {
		p, err := ParseCollisionPolicy("")
		require.NoError(t, err)
		require.Equal(t, CollisionAdjustIfPossibleButAlwaysSpawn, p)
	})

	t.Run("known policy is parsed", func(t *testing.T) {
		p, err := ParseCollisionPolicy(" Dont_Spawn_If_Colliding ")
		require.NoError(t, err)
		require.Equal(t, CollisionDontSpawnIfColliding, p)
	})

	t.Run("unknown policy returns an error", func(t *testing.T) {
		_, err := ParseCollisionPolicy("teleport")
		require.Error(t, err)
		require.Equal(t, ErrTypeInvalidCollisionPolicy, errors.Type(err))
	})
}

func TestPartitionStoreFind(t *testing.T) {
	var s PartitionStore
	gallery := s.Register("/Game/Maps/Gallery")
	s.Register("/Game/Maps/Lobby")

	t.Run("find by package name", func(t *testing.T) {
		p, ok := s.Find("/Game/Maps/Gallery")
		require.True(t, ok)
		require.Equal(t, gallery, p)
	})

	t.Run("find by short name", func(t *testing.T) {
		p, ok := s.Find("Gallery")
		require.True(t, ok)
		require.Equal(t, gallery, p)
	})

	t.Run("unknown partition is not found", func(t *testing.T) {
		p, ok := s.Find("Attic")
		require.False(t, ok)
		require.Nil(t, p)
	})

	t.Run("registering twice returns the same partition", func(t *testing.T) {
		require.Equal(t, gallery, s.Register("/Game/Maps/Gallery"))
		require.Len(t, s.Partitions(), 2)
	})
}

func TestPartitionStoreLoad(t *testing.T) {
	t.Run("load marks the partition resident", func(t *testing.T) {
		var s PartitionStore
		s.Register("/Game/Maps/Gallery")

		p, err := s.Load(context.Background(), "Gallery", false)
		require.NoError(t, err)
		require.True(t, p.IsLoaded())
		require.False(t, p.IsVisible())

		p, err = s.Load(context.Background(), "Gallery", true)
		require.NoError(t, err)
		require.True(t, p.IsVisible())
	})

	t.Run("loading an unknown partition returns an error", func(t *testing.T) {
		var s PartitionStore
		_, err := s.Load(context.Background(), "Gallery", true)
		require.Error(t, err)
		require.Equal(t, ErrTypePartitionNotFound, errors.Type(err))
	})

	t.Run("canceled context returns an error", func(t *testing.T) {
		var s PartitionStore
		s.Register("Gallery")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Load(ctx, "Gallery", true)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPartitionStoreSpawn(t *testing.T) {
	t.Run("spawned actor gets an id and a handle", func(t *testing.T) {
		s := newLoadedStore(t)

		a, err := s.Spawn("Painting", poseAt(1, 2, 3), "Gallery", CollisionAlwaysSpawn)
		require.NoError(t, err)
		require.Equal(t, uint32(1), a.ID)
		require.NotEmpty(t, a.Handle)
		require.Equal(t, "Painting", a.Class)

		p, _ := s.Find("Gallery")
		require.Equal(t, []*Actor{a}, p.Actors())
	})

	t.Run("spawning into an unloaded partition returns an error", func(t *testing.T) {
		var s PartitionStore
		s.Register("Gallery")

		_, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.Error(t, err)
		require.Equal(t, ErrTypePartitionNotLoaded, errors.Type(err))
	})

	t.Run("spawning into an unknown partition returns an error", func(t *testing.T) {
		s := newLoadedStore(t)

		_, err := s.Spawn("Painting", poseAt(0, 0, 0), "Attic", CollisionAlwaysSpawn)
		require.Error(t, err)
		require.Equal(t, ErrTypePartitionNotFound, errors.Type(err))
	})

	t.Run("spawning without a class returns an error", func(t *testing.T) {
		s := newLoadedStore(t)

		_, err := s.Spawn("", poseAt(0, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.Error(t, err)
		require.Equal(t, ErrTypeMissingClass, errors.Type(err))
	})

	t.Run("always spawn ignores collisions", func(t *testing.T) {
		s := newLoadedStore(t)

		_, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.NoError(t, err)
		a, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionDefault)
		require.NoError(t, err)
		require.Equal(t, mgl64.Vec3{0, 0, 0}, a.Pose.Position)
	})

	t.Run("dont spawn if colliding refuses occupied locations", func(t *testing.T) {
		s := newLoadedStore(t)

		_, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.NoError(t, err)

		_, err = s.Spawn("Painting", poseAt(0.5, 0, 0), "Gallery", CollisionDontSpawnIfColliding)
		require.Error(t, err)
		require.Equal(t, ErrTypeSpawnCollision, errors.Type(err))

		_, err = s.Spawn("Painting", poseAt(5, 0, 0), "Gallery", CollisionDontSpawnIfColliding)
		require.NoError(t, err)
	})

	t.Run("adjust moves the actor along its normal", func(t *testing.T) {
		s := newLoadedStore(t)

		_, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.NoError(t, err)

		a, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAdjustIfPossibleButAlwaysSpawn)
		require.NoError(t, err)
		require.True(t, mgl64.Vec3{0, 0, adjustStep}.ApproxEqual(a.Pose.Position))
	})

	t.Run("adjust gives up when every step collides", func(t *testing.T) {
		s := newLoadedStore(t)

		for i := 0; i <= maxAdjustments; i++ {
			_, err := s.Spawn("Painting", poseAt(0, 0, float64(i)*adjustStep), "Gallery", CollisionAlwaysSpawn)
			require.NoError(t, err)
		}

		_, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAdjustIfPossibleButDontSpawn)
		require.Error(t, err)
		require.Equal(t, ErrTypeSpawnCollision, errors.Type(err))

		a, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAdjustIfPossibleButAlwaysSpawn)
		require.NoError(t, err)
		require.Equal(t, mgl64.Vec3{0, 0, 0}, a.Pose.Position)
	})
}

func TestPartitionStoreDespawn(t *testing.T) {
	t.Run("despawned actor is removed and its id reused", func(t *testing.T) {
		s := newLoadedStore(t)

		first, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.NoError(t, err)
		_, err = s.Spawn("Painting", poseAt(5, 0, 0), "Gallery", CollisionAlwaysSpawn)
		require.NoError(t, err)

		require.NoError(t, s.Despawn("Gallery", first.ID))

		p, _ := s.Find("Gallery")
		require.Equal(t, 1, p.ActorCount())

		a, err := s.Spawn("Painting", poseAt(0, 0, 0), "Gallery", CollisionDontSpawnIfColliding)
		require.NoError(t, err)
		require.Equal(t, first.ID, a.ID)
		require.NotEqual(t, first.Handle, a.Handle)
	})

	t.Run("unknown actor returns an error", func(t *testing.T) {
		s := newLoadedStore(t)

		err := s.Despawn("Gallery", 42)
		require.Error(t, err)
		require.Equal(t, ErrTypeActorNotFound, errors.Type(err))
	})

	t.Run("unknown partition returns an error", func(t *testing.T) {
		s := newLoadedStore(t)

		err := s.Despawn("Attic", 1)
		require.Error(t, err)
		require.Equal(t, ErrTypePartitionNotFound, errors.Type(err))
	})
}
