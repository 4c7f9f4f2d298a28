package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"NarrativeRadar/pkg/logger"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	id := tr.Start()
	if len(id) != 12 {
		t.Fatalf("id length: %q", id)
	}

	j, ok := tr.Get(id)
	if !ok || j.State != StateQueued {
		t.Fatalf("fresh job: %+v", j)
	}

	tr.MarkRunning(id)
	if j, _ = tr.Get(id); j.State != StateRunning {
		t.Fatalf("running: %+v", j)
	}

	tr.MarkDone(id)
	if j, _ = tr.Get(id); j.State != StateDone || j.Error != "" {
		t.Fatalf("done: %+v", j)
	}
}

func TestTrackerErrorState(t *testing.T) {
	tr := NewTracker()
	id := tr.Start()
	tr.MarkError(id, "provider exploded")
	j, _ := tr.Get(id)
	if j.State != StateError || j.Error != "provider exploded" {
		t.Fatalf("error state: %+v", j)
	}
}

func TestTrackerUnknownJob(t *testing.T) {
	tr := NewTracker()
	if _, ok := tr.Get("nope"); ok {
		t.Fatal("unknown id must miss")
	}
	tr.MarkDone("nope") // no-op, must not panic
}

func TestTrackerGC(t *testing.T) {
	tr := NewTracker()
	now := time.Unix(1000, 0)
	tr.SetClock(func() time.Time { return now })

	oldDone := tr.Start()
	tr.MarkDone(oldDone)
	stillRunning := tr.Start()
	tr.MarkRunning(stillRunning)

	now = now.Add(2 * time.Hour)
	freshDone := tr.Start()
	tr.MarkDone(freshDone)

	if dropped := tr.GC(time.Hour); dropped != 1 {
		t.Fatalf("expected one dropped job, got %d", dropped)
	}
	if _, ok := tr.Get(oldDone); ok {
		t.Fatal("stale finished job must be dropped")
	}
	if _, ok := tr.Get(stillRunning); !ok {
		t.Fatal("running jobs are never dropped")
	}
	if _, ok := tr.Get(freshDone); !ok {
		t.Fatal("recently finished jobs are kept")
	}
}

func TestTrackerSweepUsesConfiguredTTL(t *testing.T) {
	tr := NewTracker()
	now := time.Unix(1000, 0)
	tr.SetClock(func() time.Time { return now })
	tr.SetTTL(10 * time.Minute)

	done := tr.Start()
	tr.MarkDone(done)

	now = now.Add(11 * time.Minute)
	if dropped := tr.Sweep(); dropped != 1 {
		t.Fatalf("expected configured ttl to apply, dropped %d", dropped)
	}

	// without an override the default linger time holds
	tr2 := NewTracker()
	now2 := time.Unix(1000, 0)
	tr2.SetClock(func() time.Time { return now2 })
	kept := tr2.Start()
	tr2.MarkDone(kept)
	now2 = now2.Add(11 * time.Minute)
	if dropped := tr2.Sweep(); dropped != 0 {
		t.Fatalf("default linger is an hour, dropped %d", dropped)
	}
	if _, ok := tr2.Get(kept); !ok {
		t.Fatal("job inside the default linger window must be kept")
	}
	tr2.SetTTL(0) // ignored
	if dropped := tr2.Sweep(); dropped != 0 {
		t.Fatalf("non-positive ttl override must be ignored, dropped %d", dropped)
	}
}

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) RefreshAll(context.Context) error {
	f.calls++
	return f.err
}

func TestRefreshJobExecute(t *testing.T) {
	tr := NewTracker()
	id := tr.Start()
	ref := &fakeRefresher{}
	job := NewRefreshJob(tr, ref, logger.Nop())

	job.Execute(context.Background(), id)
	if j, _ := tr.Get(id); j.State != StateDone {
		t.Fatalf("state after success: %+v", j)
	}
	if ref.calls != 1 {
		t.Fatalf("refresher calls: %d", ref.calls)
	}
}

func TestRefreshJobExecuteFailure(t *testing.T) {
	tr := NewTracker()
	id := tr.Start()
	job := NewRefreshJob(tr, &fakeRefresher{err: errors.New("sink down")}, logger.Nop())

	job.Execute(context.Background(), id)
	j, _ := tr.Get(id)
	if j.State != StateError || j.Error != "sink down" {
		t.Fatalf("state after failure: %+v", j)
	}
}

func TestRefreshJobHandlePayload(t *testing.T) {
	tr := NewTracker()
	id := tr.Start()
	job := NewRefreshJob(tr, &fakeRefresher{}, logger.Nop())

	// the queue hands payloads over as generic maps
	if err := job.Handle(context.Background(), map[string]interface{}{"jobId": id}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if j, _ := tr.Get(id); j.State != StateDone {
		t.Fatalf("state: %+v", j)
	}
}
