package matcher

import (
	"context"
	"sort"

	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/textnorm"
	"github.com/rfpcruncher/engine/vectordb"
)

// SimilarQuestions scores every cached question against the query and
// returns the top n, sorted by descending similarity. Unlike Match it
// applies no threshold; callers see the full ranking.
func (s *EmbeddingStrategy) SimilarQuestions(ctx context.Context, query string, n int) ([]schema.SimilarQuestion, error) {
	entries := s.Store.Entries()
	if len(entries) == 0 {
		return nil, nil
	}
	if n <= 0 {
		n = 5
	}

	queryVec, err := s.Provider.GetEmbedding(ctx, textnorm.Normalize(query))
	if err != nil {
		return nil, err
	}

	scored := make([]schema.SimilarQuestion, 0, len(entries))
	for _, e := range entries {
		vec, err := s.entryEmbedding(ctx, e.Question)
		if err != nil {
			return nil, err
		}
		scored = append(scored, schema.SimilarQuestion{
			Question: e.Question,
			Answer:   e.Answer,
			Score:    vectordb.Cosine(queryVec, vec),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}
