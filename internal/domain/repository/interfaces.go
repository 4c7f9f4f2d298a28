package repository

import (
	"context"
	"time"

	"NarrativeRadar/internal/domain/models"
)

// SnapshotStore persists the candidate sets produced by refresh runs and
// serves the latest set per narrative.
type SnapshotStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Replace(ctx context.Context, snap models.Snapshot) error
	Latest(ctx context.Context, narrative string) (models.Snapshot, bool, error)
	LastRefresh(ctx context.Context) (time.Time, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher pushes finished candidate sets to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, snap models.Snapshot) error
	Close() error
}

type Metrics interface {
	RecordCandidates(narrative string, n int)
	RecordRefreshDuration(narrative string, seconds float64)
	RecordError(kind string)
}
