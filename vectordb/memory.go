package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rfpcruncher/engine/schema"
)

// MemoryProvider is an in-process vector store. It backs local development
// and tests where running milvus or qdrant is not worth the setup.
type MemoryProvider struct {
	mu   sync.RWMutex
	docs []schema.Document
}

// NewMemoryProvider creates an empty in-memory vector store.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (p *MemoryProvider) GetProviderType() string { return "memory" }

func (p *MemoryProvider) Init(ctx context.Context, dimensions int) error { return nil }

func (p *MemoryProvider) AddDocs(ctx context.Context, docs []schema.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, docs...)
	return nil
}

func (p *MemoryProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 10
	var threshold float64
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	results := make([]schema.SearchResult, 0, len(p.docs))
	for _, doc := range p.docs {
		if opts != nil && !matchesFilters(doc, opts.Filters) {
			continue
		}
		score := Cosine(vector, doc.Vector)
		if score < threshold {
			continue
		}
		results = append(results, schema.SearchResult{Document: doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (p *MemoryProvider) DeleteBySource(ctx context.Context, source string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.docs[:0]
	for _, doc := range p.docs {
		if doc.Metadata["source_file"] != source {
			kept = append(kept, doc)
		}
	}
	p.docs = kept
	return nil
}

func (p *MemoryProvider) Close() error { return nil }

func matchesFilters(doc schema.Document, filters map[string]string) bool {
	for k, v := range filters {
		if doc.Metadata[k] != v {
			return false
		}
	}
	return true
}

// Cosine computes cosine similarity between two vectors. Mismatched or
// zero-magnitude vectors score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
