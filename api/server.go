package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/ingest"
	"github.com/rfpcruncher/engine/pipeline"
)

// Server exposes the answering engine over HTTP.
type Server struct {
	cfg      *config.Config
	engine   *pipeline.Engine
	ingestor *ingest.Ingestor
}

// NewServer creates the HTTP server around an answering engine.
func NewServer(cfg *config.Config, engine *pipeline.Engine, ingestor *ingest.Ingestor) *Server {
	return &Server{cfg: cfg, engine: engine, ingestor: ingestor}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/generate", s.handleGenerate)
	r.Post("/similar_questions", s.handleSimilarQuestions)
	r.Post("/save_answer", s.handleSaveAnswer)
	r.Post("/enrich", s.handleEnrich)
	r.Post("/ingest", s.handleIngest)
	r.Post("/batch", s.handleBatch)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured window.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("api: listening on %s", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownSeconds)*time.Second)
		defer cancel()
		logger.Infof("api: shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// cors allows browser frontends on any origin, matching what the product
// UI expects.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
