package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/domain/repository"
)

// MemorySnapshotStore keeps the latest snapshot per narrative in memory.
// It backs single-node deployments and tests; a restart loses state.
type MemorySnapshotStore struct {
	mu          sync.RWMutex
	snaps       map[string]models.Snapshot
	lastRefresh time.Time
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snaps: make(map[string]models.Snapshot)}
}

var _ repository.SnapshotStore = (*MemorySnapshotStore)(nil)

func (s *MemorySnapshotStore) Init(ctx context.Context) error { return nil }

func (s *MemorySnapshotStore) Replace(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[strings.ToLower(snap.Narrative)] = snap
	if snap.ComputedAt.After(s.lastRefresh) {
		s.lastRefresh = snap.ComputedAt
	}
	return nil
}

func (s *MemorySnapshotStore) Latest(ctx context.Context, narrative string) (models.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[strings.ToLower(narrative)]
	return snap, ok, nil
}

func (s *MemorySnapshotStore) LastRefresh(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, nil
}

func (s *MemorySnapshotStore) Health(ctx context.Context) error { return nil }

func (s *MemorySnapshotStore) Close() error { return nil }
