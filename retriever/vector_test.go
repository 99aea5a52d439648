package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/vectordb"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) GetProviderType() string { return "stub" }

func TestVectorRetrieverSearch(t *testing.T) {
	store := vectordb.NewMemoryProvider()
	_ = store.AddDocs(context.Background(), []schema.Document{
		{ID: "1", Content: "chunk one", Vector: []float32{1, 0}},
		{ID: "2", Content: "chunk two", Vector: []float32{0, 1}},
	})

	r := &VectorRetriever{
		Embed: &stubEmbedder{vec: []float32{1, 0}},
		Store: store,
		TopK:  5,
	}

	results, err := r.Search(context.Background(), "raw query text", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.ID != "1" {
		t.Errorf("expected best chunk 1, got %s", results[0].Document.ID)
	}
}

func TestVectorRetrieverEmptyStore(t *testing.T) {
	r := &VectorRetriever{
		Embed: &stubEmbedder{vec: []float32{1, 0}},
		Store: vectordb.NewMemoryProvider(),
		TopK:  5,
	}

	results, err := r.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("empty store must not be an error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestVectorRetrieverEmbedFailure(t *testing.T) {
	r := &VectorRetriever{
		Embed: &stubEmbedder{err: errors.New("backend down")},
		Store: vectordb.NewMemoryProvider(),
	}

	_, err := r.Search(context.Background(), "query", 5)
	if !IsRetrieval(err) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
}
