package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/matcher"
	"github.com/rfpcruncher/engine/pipeline"
	"github.com/rfpcruncher/engine/prompt"
	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/verifier"
)

type stubGenerator struct {
	response string
}

func (s *stubGenerator) GenerateCompletion(ctx context.Context, p string) (string, error) {
	return s.response, nil
}

func (s *stubGenerator) GetProviderType() string { return "stub" }

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 1}, nil
}

func (s *stubEmbedder) GetProviderType() string { return "stub" }

type stubRetriever struct {
	results []schema.SearchResult
}

func (s *stubRetriever) Type() string { return "stub" }

func (s *stubRetriever) Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error) {
	return s.results, nil
}

func newTestServer(t *testing.T, entries map[string]string, gen *stubGenerator) (*Server, *qastore.Store) {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	store, err := qastore.Open(filepath.Join(t.TempDir(), "qa.xlsx"), "Sheet1")
	require.NoError(t, err)
	for q, a := range entries {
		require.NoError(t, store.Save(q, a))
	}

	semantic := &matcher.EmbeddingStrategy{
		Store:     store,
		Provider:  &stubEmbedder{vectors: map[string][]float32{"what is sso": {1, 0}}},
		Threshold: cfg.Matching.EmbeddingThreshold,
	}
	prompts := &prompt.Builder{}
	engine := pipeline.New(cfg, pipeline.Deps{
		Store:     store,
		Cascade:   matcher.NewCascade(&matcher.ExactStrategy{Store: store}),
		Semantic:  semantic,
		Retriever: &stubRetriever{},
		Generator: gen,
		Prompts:   prompts,
		Verifier:  &verifier.Verifier{Provider: gen, Prompts: prompts},
	})
	return NewServer(cfg, engine, nil), store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil, &stubGenerator{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestGenerateCachedAnswer(t *testing.T) {
	gen := &stubGenerator{response: "Enriched Answer:\nSSO is supported via SAML."}
	srv, _ := newTestServer(t, map[string]string{"What is SSO?": "SSO is supported."}, gen)

	rec := postJSON(t, srv.Router(), "/generate", generateRequest{Query: "What is SSO?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var ans schema.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, schema.ProvenanceCache, ans.Provenance)
	assert.Equal(t, "SSO is supported via SAML.", ans.Response)
}

func TestGenerateBlankQueryRejected(t *testing.T) {
	srv, _ := newTestServer(t, nil, &stubGenerator{})
	rec := postJSON(t, srv.Router(), "/generate", generateRequest{Query: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateNoContextIsTerminal(t *testing.T) {
	srv, _ := newTestServer(t, nil, &stubGenerator{response: "ignored"})
	rec := postJSON(t, srv.Router(), "/generate", generateRequest{Query: "unknown topic"})
	require.Equal(t, http.StatusOK, rec.Code)

	var ans schema.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, schema.ProvenanceNone, ans.Provenance)
	assert.Equal(t, pipeline.ResponseInsufficientDocs, ans.Response)
}

func TestSaveAnswerRoundTrip(t *testing.T) {
	srv, store := newTestServer(t, nil, &stubGenerator{})
	rec := postJSON(t, srv.Router(), "/save_answer", saveAnswerRequest{Query: "New question?", Answer: "New answer."})
	require.Equal(t, http.StatusOK, rec.Code)

	got, ok := store.Lookup("new question")
	require.True(t, ok)
	assert.Equal(t, "New answer.", got)
}

func TestSimilarQuestions(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"What is SSO?": "SSO is supported."}, &stubGenerator{})
	rec := postJSON(t, srv.Router(), "/similar_questions", queryRequest{Query: "What is SSO?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp similarQuestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.SimilarQuestions, 1)
	assert.Equal(t, "what is sso", resp.SimilarQuestions[0].Question)
	assert.InDelta(t, 1.0, resp.SimilarQuestions[0].Score, 0.001)
}

func TestEnrich(t *testing.T) {
	gen := &stubGenerator{response: "prompt echo\nEnriched Answer:\nA better answer."}
	srv, _ := newTestServer(t, nil, gen)
	rec := postJSON(t, srv.Router(), "/enrich", enrichRequest{Query: "q", ResponseToEnrich: "base"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp enrichResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A better answer.", resp.EnrichedResponse)
}

func TestEnrichRequiresFields(t *testing.T) {
	srv, _ := newTestServer(t, nil, &stubGenerator{})
	rec := postJSON(t, srv.Router(), "/enrich", enrichRequest{Query: "q"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchRequiresQueries(t *testing.T) {
	srv, _ := newTestServer(t, nil, &stubGenerator{})
	rec := postJSON(t, srv.Router(), "/batch", batchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchAnswersInOrder(t *testing.T) {
	gen := &stubGenerator{response: "Enriched Answer:\nenriched"}
	srv, _ := newTestServer(t, map[string]string{"cached q": "cached a"}, gen)

	rec := postJSON(t, srv.Router(), "/batch", batchRequest{Queries: []string{"cached q", "missing q"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Answers, 2)
	assert.Equal(t, schema.ProvenanceCache, resp.Answers[0].Provenance)
	assert.Equal(t, schema.ProvenanceNone, resp.Answers[1].Provenance)
}
