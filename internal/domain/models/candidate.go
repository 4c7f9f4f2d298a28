package models

import "time"

// ParentCandidate is a token or project discovered as relevant to a narrative.
// Optional numeric fields are pointers so merge and scoring code can tell
// "absent" from "zero".
type ParentCandidate struct {
	Label        string     `json:"label"`
	Symbol       string     `json:"symbol,omitempty"`
	Address      string     `json:"address,omitempty"`
	Chain        string     `json:"chain,omitempty"`
	Matches      int        `json:"matches"`
	Score        float64    `json:"score"`
	Price        *float64   `json:"price,omitempty"`
	MarketCap    *float64   `json:"marketCap,omitempty"`
	Vol24h       *float64   `json:"vol24h,omitempty"`
	LiquidityUsd *float64   `json:"liquidityUsd,omitempty"`
	Image        string     `json:"image,omitempty"`
	URL          string     `json:"url,omitempty"`
	Source       string     `json:"source,omitempty"`  // single provider tag, or comma-joined after merge
	Sources      []string   `json:"sources,omitempty"` // ordered distinct provenance tags
	Children     []Evidence `json:"children,omitempty"`
}

// Evidence is a supporting sub-record backing a parent's relevance,
// typically an on-chain trading pair.
type Evidence struct {
	Symbol        string  `json:"symbol,omitempty"`
	Name          string  `json:"name,omitempty"`
	Address       string  `json:"address,omitempty"`
	PairAddress   string  `json:"pairAddress,omitempty"`
	DexID         string  `json:"dexId,omitempty"`
	ChainID       string  `json:"chainId,omitempty"`
	URL           string  `json:"url,omitempty"`
	Volume24hUsd  float64 `json:"volume24hUsd"`
	LiquidityUsd  float64 `json:"liquidityUsd"`
	PairCreatedAt int64   `json:"pairCreatedAt,omitempty"` // ms epoch, 0 when unknown
}

// Narrative is a seed definition: a thematic label plus the matching rules
// applied to discovered candidates.
type Narrative struct {
	Name            string
	Terms           []string
	AllowNameMatch  bool
	Block           []string
	RequireAllTerms bool
	Cap             int // 0 = unlimited
}

// Snapshot is a persisted set of candidates computed for one narrative.
type Snapshot struct {
	Narrative  string            `json:"narrative"`
	ComputedAt time.Time         `json:"computedAt"`
	Candidates []ParentCandidate `json:"parents"`
}

// NarrativeHeat is a narrative-level heat reading derived from aggregate
// on-chain volume and liquidity.
type NarrativeHeat struct {
	Narrative    string  `json:"narrative"`
	VolumeUsd    float64 `json:"onchainVolumeUsd"`
	LiquidityUsd float64 `json:"onchainLiquidityUsd"`
	HeatScore    float64 `json:"heatScore"`
}

// Clone returns a deep copy; merge code builds new records rather than
// mutating adapter output.
func (p ParentCandidate) Clone() ParentCandidate {
	out := p
	out.Price = cloneFloat(p.Price)
	out.MarketCap = cloneFloat(p.MarketCap)
	out.Vol24h = cloneFloat(p.Vol24h)
	out.LiquidityUsd = cloneFloat(p.LiquidityUsd)
	if p.Sources != nil {
		out.Sources = append([]string(nil), p.Sources...)
	}
	if p.Children != nil {
		out.Children = append([]Evidence(nil), p.Children...)
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float64Ptr is a convenience for building optional fields.
func Float64Ptr(v float64) *float64 { return &v }

// FloatOrZero dereferences an optional field, treating absent as zero.
func FloatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
