package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	answerProvenance = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qa_answer_provenance_total",
		Help: "Answers served, labeled by where the answer came from",
	}, []string{"provenance"})

	stageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qa_stage_latency_ms",
		Help:    "Latency of pipeline stages in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"stage"})

	retrieverResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qa_retriever_results",
		Help:    "Number of chunks returned by a retriever",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	}, []string{"type"})

	matchScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "qa_match_score",
		Help:    "Similarity score of cache hits",
		Buckets: []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 0.99, 1.0},
	})

	verificationVerdict = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qa_verification_verdict_total",
		Help: "Verification verdict count",
	}, []string{"verdict"})

	ingestedChunks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qa_ingested_chunks_total",
		Help: "Chunks written to the vector store per source file",
	}, []string{"source"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(answerProvenance, stageLatency, retrieverResults, matchScore, verificationVerdict, ingestedChunks)
	})
}

// IncProvenance counts an answer served with the given provenance.
func IncProvenance(provenance string) {
	ensureRegistered()
	answerProvenance.WithLabelValues(provenance).Inc()
}

// ObserveStage records latency for a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	ensureRegistered()
	stageLatency.WithLabelValues(stage).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveRetriever records the result size of a retriever call.
func ObserveRetriever(typ string, results int) {
	ensureRegistered()
	retrieverResults.WithLabelValues(typ).Observe(float64(results))
}

// ObserveMatchScore records the similarity score of a cache hit.
func ObserveMatchScore(score float64) {
	ensureRegistered()
	if score >= 0 {
		matchScore.Observe(score)
	}
}

// IncVerdict increments the verification verdict counter.
func IncVerdict(verdict string) {
	ensureRegistered()
	verificationVerdict.WithLabelValues(verdict).Inc()
}

// AddIngestedChunks counts chunks ingested from a source file.
func AddIngestedChunks(source string, n int) {
	ensureRegistered()
	ingestedChunks.WithLabelValues(source).Add(float64(n))
}

// Collectors exposes all collectors for external registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		answerProvenance, stageLatency, retrieverResults, matchScore, verificationVerdict, ingestedChunks,
	}
}
