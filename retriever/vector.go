package retriever

import (
	"context"

	"github.com/rfpcruncher/engine/embedding"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/vectordb"
)

// VectorRetriever implements Retriever using embedding+vector store backend.
// The query is embedded as given; normalization applies to cache matching
// only, never to retrieval.
type VectorRetriever struct {
	Embed embedding.Provider
	Store vectordb.VectorStoreProvider
	TopK  int
}

func (r *VectorRetriever) Type() string { return "vector" }

func (r *VectorRetriever) Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error) {
	if topK <= 0 {
		if r.TopK > 0 {
			topK = r.TopK
		} else {
			topK = 5
		}
	}
	v, err := r.Embed.GetEmbedding(ctx, query)
	if err != nil {
		return nil, &RetrievalError{Backend: r.Embed.GetProviderType(), Err: err}
	}
	opts := &schema.SearchOptions{TopK: topK}
	results, err := r.Store.SearchDocs(ctx, v, opts)
	if err != nil {
		return nil, &RetrievalError{Backend: r.Store.GetProviderType(), Err: err}
	}
	return results, nil
}
