package usecase

import (
	"context"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/domain/repository"
	"NarrativeRadar/internal/seeds"
	"NarrativeRadar/internal/source"
	"NarrativeRadar/pkg/logger"
)

// Refresher walks every seeded narrative, asks the configured adapter for
// parents and persists the result as a snapshot. Provider trouble surfaces
// as an empty candidate set per narrative, never as a failed run; only
// store/publish errors make a run fail.
type Refresher struct {
	seeds   *seeds.Store
	adapter source.Adapter
	store   repository.SnapshotStore
	pub     repository.Publisher // nil when sink.type is none
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewRefresher(
	seedStore *seeds.Store,
	adapter source.Adapter,
	store repository.SnapshotStore,
	pub repository.Publisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *Refresher {
	return &Refresher{
		seeds:   seedStore,
		adapter: adapter,
		store:   store,
		pub:     pub,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// SetClock replaces the clock for tests.
func (r *Refresher) SetClock(now func() time.Time) { r.now = now }

// RefreshAll refreshes every narrative in seed-file order. The first
// store/publish error aborts the run; earlier narratives keep their new
// snapshots.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	for _, n := range r.seeds.All() {
		if err := r.RefreshOne(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// RefreshOne refreshes a single narrative.
func (r *Refresher) RefreshOne(ctx context.Context, n models.Narrative) error {
	start := r.now()
	items := r.adapter.ParentsFor(ctx, n.Name, n.Terms, source.OptionsFromNarrative(n))
	if n.Cap > 0 && len(items) > n.Cap {
		items = items[:n.Cap]
	}

	snap := models.Snapshot{
		Narrative:  n.Name,
		ComputedAt: r.now(),
		Candidates: items,
	}
	if err := r.store.Replace(ctx, snap); err != nil {
		r.metrics.RecordError("snapshot_store")
		return err
	}
	if r.pub != nil {
		if err := r.pub.Publish(ctx, snap); err != nil {
			r.metrics.RecordError("snapshot_publish")
			return err
		}
	}

	elapsed := r.now().Sub(start).Seconds()
	r.metrics.RecordCandidates(n.Name, len(items))
	r.metrics.RecordRefreshDuration(n.Name, elapsed)
	r.log.Info("narrative refreshed",
		logger.String("narrative", n.Name),
		logger.String("adapter", r.adapter.Name()),
		logger.Int("parents", len(items)),
		logger.Float64("seconds", elapsed))
	return nil
}

// Snapshot returns the latest stored candidate set for a narrative.
func (r *Refresher) Snapshot(ctx context.Context, narrative string) (models.Snapshot, bool, error) {
	return r.store.Latest(ctx, narrative)
}

// LastRefresh reports when any narrative was last refreshed.
func (r *Refresher) LastRefresh(ctx context.Context) (time.Time, error) {
	return r.store.LastRefresh(ctx)
}
