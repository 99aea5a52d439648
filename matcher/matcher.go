package matcher

import (
	"context"

	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/textnorm"
)

// Match is a successful hit against the QA cache.
type Match struct {
	Question   string
	Answer     string
	Score      float64
	Provenance schema.Provenance
}

// Strategy is one stage of the question matching cascade. The query passed
// to Match is already normalized. A nil Match with nil error is a miss.
type Strategy interface {
	Name() string
	Match(ctx context.Context, query string) (*Match, error)
}

// Cascade runs strategies in order and returns the first hit. Strategy
// failures are logged and treated as misses so a flaky embedding backend
// never breaks answering.
type Cascade struct {
	strategies []Strategy
}

// NewCascade builds a cascade over the given ordered strategies.
func NewCascade(strategies ...Strategy) *Cascade {
	return &Cascade{strategies: strategies}
}

// Lookup normalizes the query and runs the cascade.
func (c *Cascade) Lookup(ctx context.Context, query string) *Match {
	normalized := textnorm.Normalize(query)
	if normalized == "" {
		return nil
	}

	for _, s := range c.strategies {
		m, err := s.Match(ctx, normalized)
		if err != nil {
			logger.Warnf("matcher: %s strategy failed, treating as miss: %v", s.Name(), err)
			continue
		}
		if m != nil {
			logger.Infof("matcher: %s hit for %q (score %.3f)", s.Name(), normalized, m.Score)
			return m
		}
	}
	return nil
}
