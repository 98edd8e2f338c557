package scatter

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/surfacegrid/models"
	"github.com/aukilabs/surfacegrid/modules/surfacegrid"
)

// Job is a request to spawn one actor per pose into a partition.
type Job struct {
	Partition string
	Class     string
	Policy    models.CollisionPolicy
	Poses     surfacegrid.SampleSet
}

// Result summarizes a processed job.
type Result struct {
	Spawned int
	Failed  int
}

type Handler struct {
	Partitions *models.PartitionStore
	JobChan    chan Job //buffered
}

// HandleJobs processes queued jobs in the background until ctx is done.
func (h Handler) HandleJobs(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return

			case job := <-h.JobChan:
				res := h.Spawn(ctx, job)
				logs.WithTag("partition", job.Partition).
					WithTag("class", job.Class).
					WithTag("spawned", res.Spawned).
					WithTag("failed", res.Failed).
					Info("scatter job done")
			}
		}
	}()
}

// Enqueue queues a job. It returns an error when ctx ends before the queue
// accepts the job.
func (h Handler) Enqueue(ctx context.Context, job Job) error {
	select {
	case h.JobChan <- job:
		instrumentQueuedJob(job.Partition)
		return nil

	case <-ctx.Done():
		return errors.New("queuing scatter job failed").
			WithTag("partition", job.Partition).
			Wrap(ctx.Err())
	}
}

// Spawn spawns the job actors one by one. Failed spawns are logged and do not
// stop the job.
func (h Handler) Spawn(ctx context.Context, job Job) Result {
	start := time.Now()
	defer instrumentJobLatency(job.Partition, start)

	var res Result
	for i, pose := range job.Poses {
		if ctx.Err() != nil {
			res.Failed += len(job.Poses) - i
			break
		}

		actor, err := h.Partitions.Spawn(job.Class, pose, job.Partition, job.Policy)
		if err != nil {
			res.Failed++
			instrumentSpawnError(job.Partition, err)
			logs.Warn(errors.New("spawning actor failed").
				WithTag("partition", job.Partition).
				WithTag("class", job.Class).
				WithTag("pose_index", i).
				Wrap(err))
			continue
		}

		res.Spawned++
		instrumentSpawn(job.Partition)
		logs.WithTag("partition", job.Partition).
			WithTag("handle", actor.Handle).
			Debug("actor spawned")
	}
	return res
}
