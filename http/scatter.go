package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/aukilabs/surfacegrid/models"
	"github.com/aukilabs/surfacegrid/scatter"
	"github.com/segmentio/encoding/json"
)

type scatterRequest struct {
	gridRequest

	Partition       string `json:"partition"`
	Class           string `json:"class"`
	CollisionPolicy string `json:"collision_policy,omitempty"`
	MakeVisible     *bool  `json:"make_visible,omitempty"`
}

type scatterResponse struct {
	Partition string        `json:"partition"`
	Queued    int           `json:"queued"`
	Generated int           `json:"generated"`
	Skipped   []skippedJSON `json:"skipped,omitempty"`
}

// ScatterHandler computes a surface grid and queues one spawn per pose into
// a partition.
type ScatterHandler struct {
	Grid       GridHandler
	Partitions *models.PartitionStore
	Scatter    scatter.Handler
}

func (h ScatterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		httpcmn.InternalServerError(w, errors.New("reading body failed").Wrap(err))
		return
	}

	var req scatterRequest
	if err := json.Unmarshal(b, &req); err != nil {
		httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
		return
	}

	if req.Class == "" {
		writeError(w, errors.New("class is empty").WithType(models.ErrTypeMissingClass))
		return
	}

	policy, err := models.ParseCollisionPolicy(req.CollisionPolicy)
	if err != nil {
		writeError(w, err)
		return
	}

	visible := true
	if req.MakeVisible != nil {
		visible = *req.MakeVisible
	}

	grid, err := h.Grid.Compute(req.gridRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	partition, err := h.Partitions.Load(r.Context(), req.Partition, visible)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.Scatter.Enqueue(r.Context(), scatter.Job{
		Partition: partition.PackageName,
		Class:     req.Class,
		Policy:    policy,
		Poses:     grid.Samples,
	})
	if err != nil {
		httpcmn.InternalServerError(w, err)
		return
	}

	logs.WithTag("partition", partition.PackageName).
		WithTag("class", req.Class).
		WithTag("policy", policy).
		WithTag("queued", len(grid.Samples)).
		Info("scatter job queued")

	grids := newGridResponse(grid)
	writeJSON(w, http.StatusAccepted, scatterResponse{
		Partition: partition.PackageName,
		Queued:    len(grid.Samples),
		Generated: grid.Generated,
		Skipped:   grids.Skipped,
	})
}

type actorJSON struct {
	ID     uint32   `json:"id"`
	Handle string   `json:"handle"`
	Class  string   `json:"class"`
	Pose   poseJSON `json:"pose"`
}

type partitionResponse struct {
	Name    string      `json:"name"`
	Loaded  bool        `json:"loaded"`
	Visible bool        `json:"visible"`
	Actors  []actorJSON `json:"actors"`
}

// HandlePartition lists the actors of the partition named by the {name}
// path value.
func HandlePartition(partitions *models.PartitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		p, ok := partitions.Find(name)
		if !ok {
			writeError(w, errors.New("partition not found").
				WithType(models.ErrTypePartitionNotFound).
				WithTag("partition", name))
			return
		}

		actors := p.Actors()
		res := partitionResponse{
			Name:    p.PackageName,
			Loaded:  p.IsLoaded(),
			Visible: p.IsVisible(),
			Actors:  make([]actorJSON, len(actors)),
		}
		for i, a := range actors {
			res.Actors[i] = actorJSON{
				ID:     a.ID,
				Handle: a.Handle,
				Class:  a.Class,
				Pose:   newPoseJSON(a.Pose),
			}
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// HandleDespawn removes the actor identified by the {name} and {id} path
// values.
func HandleDespawn(partitions *models.PartitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
		if err != nil {
			httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
			return
		}

		if err := partitions.Despawn(name, uint32(id)); err != nil {
			writeError(w, err)
			return
		}

		logs.WithTag("partition", name).
			WithTag("actor_id", id).
			Debug("actor despawned")
		w.WriteHeader(http.StatusNoContent)
	}
}
