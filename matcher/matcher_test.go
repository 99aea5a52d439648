package matcher

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfpcruncher/engine/cache"
	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/schema"
)

// mockEmbedder returns canned vectors per text and counts calls.
type mockEmbedder struct {
	vectors map[string][]float32
	deflt   []float32
	err     error
	calls   int
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.deflt != nil {
		return m.deflt, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m *mockEmbedder) GetProviderType() string { return "mock" }

func newStore(t *testing.T, pairs ...[2]string) *qastore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qa.xlsx")
	s, err := qastore.Open(path, "Sheet1")
	require.NoError(t, err)
	for _, p := range pairs {
		require.NoError(t, s.Save(p[0], p[1]))
	}
	return s
}

func TestExactStrategy(t *testing.T) {
	store := newStore(t, [2]string{"What is SSO?", "Single sign on support."})
	s := &ExactStrategy{Store: store}

	m, err := s.Match(context.Background(), "what is sso")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Single sign on support.", m.Answer)
	assert.Equal(t, schema.ProvenanceCache, m.Provenance)
	assert.Equal(t, 1.0, m.Score)

	m, err = s.Match(context.Background(), "unrelated question")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestEmbeddingStrategyThresholdInclusive(t *testing.T) {
	store := newStore(t, [2]string{"stored question", "stored answer"})

	// cos(query, stored) = 3/5, exactly representable, equal to the threshold.
	emb := &mockEmbedder{vectors: map[string][]float32{
		"query text":      {1, 0},
		"stored question": {3, 4},
	}}
	s := &EmbeddingStrategy{Store: store, Provider: emb, Threshold: 0.6}

	m, err := s.Match(context.Background(), "query text")
	require.NoError(t, err)
	require.NotNil(t, m, "score equal to the threshold must match")
	assert.Equal(t, schema.ProvenanceEmbedding, m.Provenance)
	assert.InDelta(t, 0.6, m.Score, 1e-9)
}

func TestEmbeddingStrategyBelowThresholdMisses(t *testing.T) {
	store := newStore(t, [2]string{"stored question", "stored answer"})
	emb := &mockEmbedder{vectors: map[string][]float32{
		"query text":      {1, 0},
		"stored question": {0, 1},
	}}
	s := &EmbeddingStrategy{Store: store, Provider: emb, Threshold: 0.70}

	m, err := s.Match(context.Background(), "query text")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestEmbeddingStrategyFirstIndexTieBreak(t *testing.T) {
	store := newStore(t,
		[2]string{"first question", "first answer"},
		[2]string{"second question", "second answer"},
	)
	// Both stored questions are identical vectors; the earlier entry wins.
	emb := &mockEmbedder{
		vectors: map[string][]float32{"query text": {1, 0}},
		deflt:   []float32{1, 0},
	}
	s := &EmbeddingStrategy{Store: store, Provider: emb, Threshold: 0.70}

	m, err := s.Match(context.Background(), "query text")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "first answer", m.Answer)
}

func TestEmbeddingStrategyCachesAndInvalidates(t *testing.T) {
	store := newStore(t, [2]string{"stored question", "stored answer"})
	emb := &mockEmbedder{deflt: []float32{1, 0}}
	s := &EmbeddingStrategy{
		Store:     store,
		Provider:  emb,
		Cache:     cache.NewLRU(16, time.Minute),
		Threshold: 0.70,
	}

	_, err := s.Match(context.Background(), "query text")
	require.NoError(t, err)
	// One call for the query, one for the stored question.
	assert.Equal(t, 2, emb.calls)

	_, err = s.Match(context.Background(), "query text")
	require.NoError(t, err)
	// Second lookup re-embeds only the query.
	assert.Equal(t, 3, emb.calls)

	s.Invalidate("stored question")
	_, err = s.Match(context.Background(), "query text")
	require.NoError(t, err)
	assert.Equal(t, 5, emb.calls)
}

func TestFuzzyStrategy(t *testing.T) {
	store := newStore(t, [2]string{"how do i reset my password", "Use the reset link."})
	s := &FuzzyStrategy{Store: store, Threshold: 90}

	m, err := s.Match(context.Background(), "how do i reset my password")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, schema.ProvenanceFuzzy, m.Provenance)
	assert.Equal(t, "Use the reset link.", m.Answer)

	m, err = s.Match(context.Background(), "completely different topic")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFuzzyStrategyThresholdInclusive(t *testing.T) {
	store := newStore(t,
		[2]string{"borderline question", "borderline answer"},
		[2]string{"distant question", "distant answer"},
	)
	scores := map[string]int{
		"borderline question": 90,
		"distant question":    89,
	}
	s := &FuzzyStrategy{
		Store:     store,
		Threshold: 90,
		Scorer:    func(query, question string) int { return scores[question] },
	}

	m, err := s.Match(context.Background(), "query text")
	require.NoError(t, err)
	require.NotNil(t, m, "score equal to the threshold must match")
	assert.Equal(t, "borderline answer", m.Answer)
	assert.InDelta(t, 0.90, m.Score, 1e-9)

	// One point under the threshold misses.
	scores["borderline question"] = 89
	m, err = s.Match(context.Background(), "query text")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCascadeOrderAndDegradation(t *testing.T) {
	store := newStore(t, [2]string{"how do i reset my password", "Use the reset link."})

	failing := &EmbeddingStrategy{
		Store:     store,
		Provider:  &mockEmbedder{err: errors.New("backend down")},
		Threshold: 0.70,
	}
	c := NewCascade(
		&ExactStrategy{Store: store},
		failing,
		&FuzzyStrategy{Store: store, Threshold: 90},
	)

	// Exact miss, embedding fails, fuzzy still answers.
	m := c.Lookup(context.Background(), "How do I reset my password!!")
	require.NotNil(t, m)
	assert.Equal(t, schema.ProvenanceFuzzy, m.Provenance)

	// Exact hit short-circuits before the failing strategy runs.
	failing.Provider.(*mockEmbedder).calls = 0
	m = c.Lookup(context.Background(), "how do i reset my password")
	require.NotNil(t, m)
	assert.Equal(t, schema.ProvenanceCache, m.Provenance)
	assert.Equal(t, 0, failing.Provider.(*mockEmbedder).calls)
}

func TestCascadeEmptyQuery(t *testing.T) {
	store := newStore(t)
	c := NewCascade(&ExactStrategy{Store: store})
	assert.Nil(t, c.Lookup(context.Background(), "  ?!  "))
}

func TestSimilarQuestions(t *testing.T) {
	store := newStore(t,
		[2]string{"alpha", "answer a"},
		[2]string{"beta", "answer b"},
		[2]string{"gamma", "answer c"},
	)
	emb := &mockEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
		"alpha": {0, 1},
		"beta":  {1, 0},
		"gamma": {0.5, 0.5},
	}}
	s := &EmbeddingStrategy{Store: store, Provider: emb, Threshold: 0.70}

	got, err := s.SimilarQuestions(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "beta", got[0].Question)
	assert.Equal(t, "gamma", got[1].Question)
	assert.Greater(t, got[0].Score, got[1].Score)
}
