package source

import (
	"context"

	"NarrativeRadar/internal/domain/models"
)

// Options carries a narrative's matching rules into an adapter call.
type Options struct {
	AllowNameMatch  bool
	Block           []string
	RequireAllTerms bool
}

// DefaultOptions matches the call contract defaults.
func DefaultOptions() Options {
	return Options{AllowNameMatch: true}
}

// Adapter produces parent candidates for a narrative. Implementations never
// return transport errors to the caller: the worst outcome of any provider
// trouble is an empty slice.
type Adapter interface {
	Name() string
	ParentsFor(ctx context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate
}

// OptionsFromNarrative maps seed matching rules onto adapter options.
func OptionsFromNarrative(n models.Narrative) Options {
	return Options{
		AllowNameMatch:  n.AllowNameMatch,
		Block:           n.Block,
		RequireAllTerms: n.RequireAllTerms,
	}
}
