package matcher

import (
	"context"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/schema"
)

// FuzzyStrategy matches with token-based string similarity on a 0-100
// scale. It runs only after the embedding stage has missed.
type FuzzyStrategy struct {
	Store     *qastore.Store
	Threshold int
	// Scorer overrides the similarity function. Nil means WRatio.
	Scorer func(query, question string) int
}

func (s *FuzzyStrategy) Name() string { return "fuzzy" }

func (s *FuzzyStrategy) Match(ctx context.Context, query string) (*Match, error) {
	entries := s.Store.Entries()
	if len(entries) == 0 {
		return nil, nil
	}

	scorer := s.Scorer
	if scorer == nil {
		scorer = fuzzy.WRatio
	}

	bestIdx := -1
	bestScore := 0
	for i, e := range entries {
		score := scorer(query, e.Question)
		// Strict greater-than keeps the earliest entry on ties.
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 || bestScore < s.Threshold {
		return nil, nil
	}
	return &Match{
		Question:   entries[bestIdx].Question,
		Answer:     entries[bestIdx].Answer,
		Score:      float64(bestScore) / 100,
		Provenance: schema.ProvenanceFuzzy,
	}, nil
}
