// Package merge recognizes "the same entity" across independent provider
// result sets and folds matching records together with per-field precedence.
package merge

import (
	"math"
	"strings"

	"NarrativeRadar/internal/domain/models"
)

// Config holds the score-mixing weights applied when both sides carry a
// record for one entity. The 0.6/0.4 split mirrors long-standing tuning;
// it is explicit here rather than buried in the merge math.
type Config struct {
	WeightFirst  float64
	WeightSecond float64
}

func DefaultConfig() Config {
	return Config{WeightFirst: 0.6, WeightSecond: 0.4}
}

// StableKey derives a deterministic cross-source identity, first applicable
// rule wins: chain+address, then symbol+name, then symbol alone. Records
// with no derivable key return "" and pass through the merge standalone.
func StableKey(c models.ParentCandidate) string {
	if keys := candidateKeys(c); len(keys) > 0 {
		return keys[0]
	}
	return ""
}

// candidateKeys lists every identity a record answers to, strongest first.
// A record carrying chain+address still answers to its symbol-derived keys,
// so providers that never see on-chain identity can match it.
func candidateKeys(c models.ParentCandidate) []string {
	chain := strings.ToLower(strings.TrimSpace(c.Chain))
	address := strings.ToLower(strings.TrimSpace(c.Address))
	symbol := strings.ToLower(strings.TrimSpace(c.Symbol))
	name := strings.ToLower(strings.TrimSpace(c.Label))

	var keys []string
	if chain != "" && address != "" {
		keys = append(keys, chain+":"+address)
	}
	if symbol != "" && name != "" {
		keys = append(keys, "symbol:"+symbol+":name:"+name)
	}
	if symbol != "" {
		keys = append(keys, "symbol:"+symbol)
	}
	return keys
}

// Merge folds the second result set into the first by stable key. The second
// list is indexed under all of each record's keys; the first list's keys are
// tried strongest-first. Matched pairs become one record with mixed scores;
// unmatched records pass through tagged with their single source. Inputs are
// never mutated; every output record is newly built.
func Merge(first, second []models.ParentCandidate, cfg Config) []models.ParentCandidate {
	secondIdx := make(map[string]int, len(second))
	for i, c := range second {
		for _, key := range candidateKeys(c) {
			prev, dup := secondIdx[key]
			// an intra-list collision keeps the higher-volume record
			if dup && models.FloatOrZero(second[prev].Vol24h) >= models.FloatOrZero(c.Vol24h) {
				continue
			}
			secondIdx[key] = i
		}
	}

	consumed := make(map[int]struct{}, len(second))
	out := make([]models.ParentCandidate, 0, len(first)+len(second))

	for _, f := range first {
		merged := false
		for _, key := range candidateKeys(f) {
			idx, ok := secondIdx[key]
			if !ok {
				continue
			}
			if _, done := consumed[idx]; done {
				continue
			}
			consumed[idx] = struct{}{}
			out = append(out, mergePair(f, second[idx], cfg))
			merged = true
			break
		}
		if !merged {
			out = append(out, standalone(f))
		}
	}

	for i, s := range second {
		if _, done := consumed[i]; done {
			continue
		}
		out = append(out, standalone(s))
	}
	return out
}

// mergePair applies the field precedence rules: the on-chain side (second)
// is generally fresher for price/volume/address/url, while the market-data
// side (first) owns marketCap/image. Liquidity and evidence children exist
// only on the second side.
func mergePair(f, s models.ParentCandidate, cfg Config) models.ParentCandidate {
	out := f.Clone()

	if s.Price != nil {
		out.Price = models.Float64Ptr(*s.Price)
	}
	if s.Vol24h != nil {
		out.Vol24h = models.Float64Ptr(*s.Vol24h)
	}
	if s.Address != "" {
		out.Address = s.Address
	}
	if s.URL != "" {
		out.URL = s.URL
	}
	if out.MarketCap == nil && s.MarketCap != nil {
		out.MarketCap = models.Float64Ptr(*s.MarketCap)
	}
	if out.Image == "" {
		out.Image = s.Image
	}
	if s.LiquidityUsd != nil {
		out.LiquidityUsd = models.Float64Ptr(*s.LiquidityUsd)
	}
	if s.Chain != "" {
		out.Chain = s.Chain
	}
	if out.Symbol == "" {
		out.Symbol = s.Symbol
	}
	out.Children = append([]models.Evidence(nil), s.Children...)

	out.Score = cfg.WeightFirst*f.Score + cfg.WeightSecond*s.Score
	out.Matches = int(math.Round(100 * out.Score))

	out.Sources = distinctSources(f.Source, s.Source)
	out.Source = strings.Join(out.Sources, ",")
	return out
}

func standalone(c models.ParentCandidate) models.ParentCandidate {
	out := c.Clone()
	if len(out.Sources) == 0 && out.Source != "" {
		out.Sources = []string{out.Source}
	}
	return out
}

// distinctSources keeps first-seen order.
func distinctSources(tags ...string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
