package matcher

import (
	"context"

	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/schema"
)

// ExactStrategy matches the normalized query against stored questions
// verbatim.
type ExactStrategy struct {
	Store *qastore.Store
}

func (s *ExactStrategy) Name() string { return "exact" }

func (s *ExactStrategy) Match(ctx context.Context, query string) (*Match, error) {
	answer, ok := s.Store.Lookup(query)
	if !ok {
		return nil, nil
	}
	return &Match{
		Question:   query,
		Answer:     answer,
		Score:      1.0,
		Provenance: schema.ProvenanceCache,
	}, nil
}
