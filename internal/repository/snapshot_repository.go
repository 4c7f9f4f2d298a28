package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/domain/repository"
	pkgkafka "NarrativeRadar/pkg/kafka"
)

// SnapshotSchema creates the snapshot table. Snapshots are append-only;
// Latest reads the newest computed_at per narrative.
var SnapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS narrative_parents (
		narrative     String,
		computed_at   DateTime64(3),
		label         String,
		symbol        String,
		chain         String,
		address       String,
		matches       Int32,
		score         Float64,
		price         Nullable(Float64),
		market_cap    Nullable(Float64),
		vol24h        Nullable(Float64),
		liquidity_usd Nullable(Float64),
		image         String,
		url           String,
		source        String,
		sources       Array(String),
		children      String
	) ENGINE = MergeTree()
	ORDER BY (narrative, computed_at, label)`,
}

// ClickHouseSnapshotStore implements SnapshotStore on ClickHouse.
type ClickHouseSnapshotStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSnapshotStore creates ClickHouse-backed snapshot storage.
func NewClickHouseSnapshotStore(db *sql.DB, table string) repository.SnapshotStore {
	if table == "" {
		table = "narrative_parents"
	}
	return &ClickHouseSnapshotStore{db: db, table: table}
}

func (s *ClickHouseSnapshotStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseSnapshotStore) Replace(ctx context.Context, snap models.Snapshot) error {
	if len(snap.Candidates) == 0 {
		return nil
	}
	// Batch insert using a VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(snap.Candidates); start += chunkSize {
		end := start + chunkSize
		if end > len(snap.Candidates) {
			end = len(snap.Candidates)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*17)
		for _, c := range snap.Candidates[start:end] {
			if c.Label == "" {
				continue
			}
			children, err := json.Marshal(c.Children)
			if err != nil {
				return fmt.Errorf("marshal children: %w", err)
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				snap.Narrative,
				snap.ComputedAt,
				c.Label,
				c.Symbol,
				c.Chain,
				c.Address,
				int32(c.Matches),
				c.Score,
				c.Price,
				c.MarketCap,
				c.Vol24h,
				c.LiquidityUsd,
				c.Image,
				c.URL,
				c.Source,
				c.Sources,
				string(children),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (narrative, computed_at, label, symbol, chain, address, matches, score, price, market_cap, vol24h, liquidity_usd, image, url, source, sources, children) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseSnapshotStore) Latest(ctx context.Context, narrative string) (models.Snapshot, bool, error) {
	q := fmt.Sprintf(`SELECT computed_at, label, symbol, chain, address, matches, score,
		price, market_cap, vol24h, liquidity_usd, image, url, source, sources, children
		FROM %s
		WHERE narrative = ? AND computed_at = (SELECT max(computed_at) FROM %s WHERE narrative = ?)
		ORDER BY score DESC, matches DESC, lower(label) ASC`, s.table, s.table)
	rows, err := s.db.QueryContext(ctx, q, narrative, narrative)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	defer rows.Close()

	snap := models.Snapshot{Narrative: narrative}
	for rows.Next() {
		var (
			c        models.ParentCandidate
			matches  int32
			children string
		)
		if err := rows.Scan(&snap.ComputedAt, &c.Label, &c.Symbol, &c.Chain, &c.Address,
			&matches, &c.Score, &c.Price, &c.MarketCap, &c.Vol24h, &c.LiquidityUsd,
			&c.Image, &c.URL, &c.Source, &c.Sources, &children); err != nil {
			return models.Snapshot{}, false, err
		}
		c.Matches = int(matches)
		if children != "" {
			if err := json.Unmarshal([]byte(children), &c.Children); err != nil {
				return models.Snapshot{}, false, fmt.Errorf("unmarshal children: %w", err)
			}
		}
		snap.Candidates = append(snap.Candidates, c)
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, false, err
	}
	if len(snap.Candidates) == 0 {
		return models.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *ClickHouseSnapshotStore) LastRefresh(ctx context.Context) (time.Time, error) {
	q := fmt.Sprintf("SELECT max(computed_at) FROM %s", s.table)
	var ts sql.NullTime
	if err := s.db.QueryRowContext(ctx, q).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time, nil
}

func (s *ClickHouseSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStore) Close() error {
	return nil // Managed by pkg
}

// KafkaSnapshotPublisher implements Publisher for Kafka: one message per
// refreshed narrative, keyed by narrative name.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates a Kafka publisher.
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, snap models.Snapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(snap.Narrative), map[string]interface{}{
		"narrative":  snap.Narrative,
		"computedAt": snap.ComputedAt.UnixMilli(),
		"parents":    snap.Candidates,
	})
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
