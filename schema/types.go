package schema

// Document is a chunk of product documentation stored in the vector database.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Vector   []float32         `json:"vector,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a document returned from a similarity search.
type SearchResult struct {
	Document `json:"document"`
	Score    float64 `json:"score"`
}

// SearchOptions controls vector search behavior.
type SearchOptions struct {
	TopK      int
	Threshold float64
	Filters   map[string]string
}

// QAEntry is one curated question/answer pair.
type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SimilarQuestion is a cached question scored against an incoming query.
type SimilarQuestion struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"similarity_score"`
}
