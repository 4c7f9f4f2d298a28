package source

import (
	"context"

	"NarrativeRadar/internal/domain/models"
)

// Source is a thin facade over the adapter selected by configuration. The
// only error it can surface is the registry's unknown-name configuration
// error at construction time.
type Source struct {
	name string
	impl Adapter
}

func New(reg *Registry, name string) (*Source, error) {
	impl, err := reg.Make(name)
	if err != nil {
		return nil, err
	}
	return &Source{name: name, impl: impl}, nil
}

func (s *Source) Name() string { return s.name }

// ParentsFor is the single synchronous call contract consumed by the API
// and refresh layers.
func (s *Source) ParentsFor(ctx context.Context, narrative string, terms []string, opts Options) []models.ParentCandidate {
	return s.impl.ParentsFor(ctx, narrative, terms, opts)
}
