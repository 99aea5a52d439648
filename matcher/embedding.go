package matcher

import (
	"context"
	"time"

	"github.com/rfpcruncher/engine/cache"
	"github.com/rfpcruncher/engine/embedding"
	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/vectordb"
)

// EmbeddingStrategy matches the query semantically against every stored
// question using cosine similarity over embeddings. Question embeddings are
// cached per entry and invalidated when that entry is rewritten, so a save
// never lets a stale vector win a match.
type EmbeddingStrategy struct {
	Store     *qastore.Store
	Provider  embedding.Provider
	Cache     cache.Cache
	Threshold float64
	CacheTTL  time.Duration
}

func (s *EmbeddingStrategy) Name() string { return "embedding" }

func (s *EmbeddingStrategy) Match(ctx context.Context, query string) (*Match, error) {
	entries := s.Store.Entries()
	if len(entries) == 0 {
		return nil, nil
	}

	queryVec, err := s.Provider.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	bestIdx := -1
	bestScore := 0.0
	for i, e := range entries {
		vec, err := s.entryEmbedding(ctx, e.Question)
		if err != nil {
			return nil, err
		}
		score := vectordb.Cosine(queryVec, vec)
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
		Score:      bestScore,
		Provenance: schema.ProvenanceEmbedding,
	}, nil
}

func (s *EmbeddingStrategy) entryEmbedding(ctx context.Context, question string) ([]float32, error) {
	if s.Cache != nil {
		if v, ok := s.Cache.Get(question); ok {
			return v.([]float32), nil
		}
	}
	vec, err := s.Provider.GetEmbedding(ctx, question)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(question, vec, s.CacheTTL)
	}
	return vec, nil
}

// Invalidate drops the cached embedding for a question after its entry
// has been saved.
func (s *EmbeddingStrategy) Invalidate(question string) {
	if s.Cache != nil {
		s.Cache.Remove(question)
	}
}
