package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/rfpcruncher/engine/schema"
)

// Retriever defines a unified search interface across different backends.
type Retriever interface {
	Type() string
	Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error)
}

// RetrievalError wraps a transport or store failure during retrieval.
// An empty result set is not an error; it is a normal outcome.
type RetrievalError struct {
	Backend string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retriever: %s search failed: %v", e.Backend, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// IsRetrieval reports whether err is a retrieval failure.
func IsRetrieval(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}
