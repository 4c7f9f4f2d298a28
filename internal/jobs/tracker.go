// Package jobs tracks background refresh runs: short ids, a small state
// machine and opportunistic cleanup of finished entries.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultGCAge is how long finished jobs linger before opportunistic
// cleanup drops them.
const DefaultGCAge = time.Hour

type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

// Job is one tracked refresh run.
type Job struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"ts"`
	Error     string    `json:"error,omitempty"`
}

// Tracker holds job states in memory. Finished jobs linger until GC drops
// them.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]*Job), ttl: DefaultGCAge, now: time.Now}
}

// SetClock replaces the clock for tests.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

// SetTTL overrides how long finished jobs linger before Sweep drops them.
// Non-positive values are ignored.
func (t *Tracker) SetTTL(d time.Duration) {
	if d > 0 {
		t.ttl = d
	}
}

// Start registers a new queued job and returns its id.
func (t *Tracker) Start() string {
	id := newID()
	t.mu.Lock()
	t.jobs[id] = &Job{ID: id, State: StateQueued, UpdatedAt: t.now()}
	t.mu.Unlock()
	return id
}

// MarkRunning transitions a job to running.
func (t *Tracker) MarkRunning(id string) { t.set(id, StateRunning, "") }

// MarkDone transitions a job to done.
func (t *Tracker) MarkDone(id string) { t.set(id, StateDone, "") }

// MarkError transitions a job to error with a message.
func (t *Tracker) MarkError(id string, msg string) { t.set(id, StateError, msg) }

func (t *Tracker) set(id string, state State, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return
	}
	j.State = state
	j.Error = msg
	j.UpdatedAt = t.now()
}

// Get returns a copy of the job with the given id.
func (t *Tracker) Get(id string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// GC drops finished jobs older than maxAge and returns how many were
// removed. Queued and running jobs are never dropped.
func (t *Tracker) GC(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge)
	t.mu.Lock()
	defer t.mu.Unlock()
	dropped := 0
	for id, j := range t.jobs {
		if (j.State == StateDone || j.State == StateError) && j.UpdatedAt.Before(cutoff) {
			delete(t.jobs, id)
			dropped++
		}
	}
	return dropped
}

// Sweep runs GC with the tracker's configured linger time.
func (t *Tracker) Sweep() int {
	return t.GC(t.ttl)
}

func newID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
