package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/llm"
	"github.com/rfpcruncher/engine/matcher"
	"github.com/rfpcruncher/engine/metrics"
	"github.com/rfpcruncher/engine/prompt"
	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/retriever"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/textnorm"
	"github.com/rfpcruncher/engine/verifier"
)

// Terminal response strings. These are part of the product contract and
// are matched on by downstream tooling, so keep them stable.
const (
	ResponseGenerationFailed = "Unable to generate a response."
	ResponseEmptyModelOutput = "The model did not return a response."
	ResponseInsufficientDocs = "The retrieved documentation does not provide sufficient details to answer this query."
)

// ErrBlankQuery is returned when a query is empty after trimming.
var ErrBlankQuery = errors.New("pipeline: blank query")

// Deps collects the collaborators the engine orchestrates. Semantic is the
// embedding stage of the cascade, held separately for similar-question
// ranking and cache invalidation on save.
type Deps struct {
	Store     *qastore.Store
	Cascade   *matcher.Cascade
	Semantic  *matcher.EmbeddingStrategy
	Retriever retriever.Retriever
	Generator llm.Provider
	Prompts   *prompt.Builder
	Verifier  *verifier.Verifier
}

// Engine answers product queries by consulting the curated QA store first
// and falling back to retrieval plus generation.
type Engine struct {
	cfg  *config.Config
	deps Deps
}

// New creates an answering engine.
func New(cfg *config.Config, deps Deps) *Engine {
	return &Engine{cfg: cfg, deps: deps}
}

// Generate answers a single query. Cached answers are enriched before they
// are returned; misses go through retrieval and generation. The only errors
// returned are input and persistence level, model and retrieval failures
// degrade into terminal response strings.
func (e *Engine) Generate(ctx context.Context, query, label string) (*schema.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrBlankQuery
	}

	matchStart := time.Now()
	if m := e.deps.Cascade.Lookup(ctx, query); m != nil {
		metrics.ObserveStage("match", matchStart)
		metrics.ObserveMatchScore(m.Score)
		ans := &schema.Answer{
			Query:           query,
			Response:        e.Enrich(ctx, query, m.Answer),
			Provenance:      m.Provenance,
			Verification:    schema.VerificationNotVerified,
			MatchedQuestion: m.Question,
			MatchScore:      m.Score,
		}
		if e.cfg.Verify.Enabled {
			ans.Verification = e.verify(ctx, query, ans.Response, nil, m.Provenance)
		}
		metrics.IncProvenance(string(ans.Provenance))
		return ans, nil
	}
	metrics.ObserveStage("match", matchStart)

	chunks := e.retrieve(ctx, query)
	if len(chunks) == 0 {
		ans := &schema.Answer{
			Query:        query,
			Response:     ResponseInsufficientDocs,
			Provenance:   schema.ProvenanceNone,
			Verification: schema.VerificationNotVerified,
		}
		metrics.IncProvenance(string(ans.Provenance))
		return ans, nil
	}

	genStart := time.Now()
	response := e.generate(ctx, query, label, chunks)
	metrics.ObserveStage("generate", genStart)

	ans := &schema.Answer{
		Query:        query,
		Response:     response,
		Provenance:   schema.ProvenanceRetrieval,
		Verification: schema.VerificationNotVerified,
	}
	if e.cfg.Verify.Enabled && response != ResponseInsufficientDocs {
		verifyStart := time.Now()
		ans.Verification = e.verify(ctx, query, response, chunks, ans.Provenance)
		metrics.ObserveStage("verify", verifyStart)
		metrics.IncVerdict(string(ans.Verification))
	}
	metrics.IncProvenance(string(ans.Provenance))
	return ans, nil
}

// verify judges an answer under the same enforced timeout as generation.
// A hung verification backend degrades to uncertain.
func (e *Engine) verify(ctx context.Context, query, answer string, chunks []string, provenance schema.Provenance) schema.VerificationOutcome {
	tctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.LLM.TimeoutSeconds)*time.Second)
	defer cancel()
	return e.deps.Verifier.Verify(tctx, query, answer, chunks, provenance)
}

// retrieve fetches documentation chunks for the raw query. Retrieval
// failure degrades to no chunks.
func (e *Engine) retrieve(ctx context.Context, query string) []string {
	start := time.Now()
	results, err := e.deps.Retriever.Search(ctx, query, e.cfg.RAG.TopK)
	metrics.ObserveStage("retrieve", start)
	if err != nil {
		logger.Warnf("pipeline: retrieval failed, answering without context: %v", err)
		return nil
	}
	metrics.ObserveRetriever(e.deps.Retriever.Type(), len(results))

	chunks := make([]string, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Content)
	}
	return chunks
}

// generate calls the model over the retrieved chunks. Model failures map
// to terminal response strings, and a generated answer that is empty or
// itself reports failure maps to the insufficient documentation response.
func (e *Engine) generate(ctx context.Context, query, label string, chunks []string) string {
	tctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.LLM.TimeoutSeconds)*time.Second)
	defer cancel()

	out, err := e.deps.Generator.GenerateCompletion(tctx, e.deps.Prompts.Generation(query, label, chunks))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyOutput) {
			logger.Warnf("pipeline: model returned no output for %q", query)
			return ResponseEmptyModelOutput
		}
		logger.Errorf("pipeline: generation failed for %q: %v", query, err)
		out = ResponseGenerationFailed
	}

	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, "Unable to generate a response") {
		return ResponseInsufficientDocs
	}
	return out
}

// Enrich refines a cached answer for the phrasing of the current query.
// Any failure falls back to the base answer unchanged.
func (e *Engine) Enrich(ctx context.Context, query, baseAnswer string) string {
	tctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.LLM.TimeoutSeconds)*time.Second)
	defer cancel()

	out, err := e.deps.Generator.GenerateCompletion(tctx, e.deps.Prompts.Enrichment(query, baseAnswer))
	if err != nil {
		logger.Warnf("pipeline: enrichment failed, keeping base answer: %v", err)
		return baseAnswer
	}
	enriched := llm.StripEcho(out, prompt.EnrichmentDelimiter)
	if enriched == "" {
		return baseAnswer
	}
	return enriched
}

// SimilarQuestions ranks cached questions against the query.
func (e *Engine) SimilarQuestions(ctx context.Context, query string, n int) ([]schema.SimilarQuestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrBlankQuery
	}
	return e.deps.Semantic.SimilarQuestions(ctx, query, n)
}

// SaveAnswer writes a curated answer into the QA store and drops the
// stale question embedding so the next match sees the new entry.
func (e *Engine) SaveAnswer(question, answer string) error {
	if strings.TrimSpace(question) == "" {
		return ErrBlankQuery
	}
	if err := e.deps.Store.Save(question, answer); err != nil {
		return err
	}
	if e.deps.Semantic != nil {
		e.deps.Semantic.Invalidate(textnorm.Normalize(question))
	}
	return nil
}

// Batch answers queries concurrently with a bounded worker pool. Freshly
// generated answers are saved back into the QA store so the next batch hits
// the cache. Answers come back in input order.
func (e *Engine) Batch(ctx context.Context, queries []string, label string) ([]*schema.Answer, error) {
	answers := make([]*schema.Answer, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Batch.Workers)
	for i, q := range queries {
		g.Go(func() error {
			ans, err := e.Generate(gctx, q, label)
			if err != nil {
				return err
			}
			answers[i] = ans
			if saveWorthy(ans) {
				return e.SaveAnswer(ans.Query, ans.Response)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}

// saveWorthy reports whether a batch answer should be written back. Only
// real generated answers qualify, never cache hits or terminal strings.
func saveWorthy(ans *schema.Answer) bool {
	if ans.Provenance != schema.ProvenanceRetrieval {
		return false
	}
	switch ans.Response {
	case ResponseGenerationFailed, ResponseEmptyModelOutput, ResponseInsufficientDocs:
		return false
	}
	return true
}
