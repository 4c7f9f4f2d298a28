package jobs

import (
	"context"

	"NarrativeRadar/pkg/logger"
	"NarrativeRadar/pkg/queue"
)

// Refresher is the piece of the refresh usecase the job needs.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// RefreshPayload is the queued message body.
type RefreshPayload struct {
	JobID string `json:"jobId"`
}

// RefreshJob executes one tracked refresh run. It implements queue.Job so
// runs can travel through the Redis queue; a job failure is terminal and
// recorded on the tracker rather than handed back for retry.
type RefreshJob struct {
	tracker   *Tracker
	refresher Refresher
	log       *logger.Logger
}

func NewRefreshJob(tracker *Tracker, refresher Refresher, log *logger.Logger) *RefreshJob {
	return &RefreshJob{tracker: tracker, refresher: refresher, log: log}
}

func (j *RefreshJob) Name() string { return "narrative-refresh" }

func (j *RefreshJob) Type() string { return "refresh" }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		j.log.Error("bad refresh payload", logger.Error(err))
		return nil
	}
	j.Execute(ctx, p.JobID)
	return nil
}

// Execute runs the refresh and records the outcome on the tracker.
func (j *RefreshJob) Execute(ctx context.Context, jobID string) {
	j.tracker.MarkRunning(jobID)
	if err := j.refresher.RefreshAll(ctx); err != nil {
		j.tracker.MarkError(jobID, err.Error())
		j.log.Error("refresh run failed",
			logger.String("job_id", jobID), logger.Error(err))
		return
	}
	j.tracker.MarkDone(jobID)
	j.log.Info("refresh run finished", logger.String("job_id", jobID))
}

// Dispatcher hands a tracked run off for background execution.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

// QueueDispatcher pushes runs through the Redis queue so any consumer
// replica can pick them up.
type QueueDispatcher struct {
	q *queue.RedisQueue
}

func NewQueueDispatcher(q *queue.RedisQueue) *QueueDispatcher {
	return &QueueDispatcher{q: q}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, jobID string) error {
	return d.q.Enqueue(ctx, "refresh", RefreshPayload{JobID: jobID})
}

// GoDispatcher runs the refresh in-process. Used when no Redis queue is
// configured.
type GoDispatcher struct {
	job *RefreshJob
}

func NewGoDispatcher(job *RefreshJob) *GoDispatcher {
	return &GoDispatcher{job: job}
}

func (d *GoDispatcher) Dispatch(ctx context.Context, jobID string) error {
	// fire-and-forget: the run outlives the enqueueing request
	go d.job.Execute(context.WithoutCancel(ctx), jobID)
	return nil
}
