package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rfpcruncher/engine/classifier"
	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/pipeline"
	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/schema"
)

type generateRequest struct {
	Query string `json:"query"`
	Label string `json:"label,omitempty"`
}

type queryRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n,omitempty"`
}

type similarQuestionsResponse struct {
	Query            string                   `json:"query"`
	SimilarQuestions []schema.SimilarQuestion `json:"similar_questions"`
}

type saveAnswerRequest struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

type enrichRequest struct {
	Query            string `json:"query"`
	Label            string `json:"label,omitempty"`
	ResponseToEnrich string `json:"response_to_enrich"`
}

type enrichResponse struct {
	EnrichedResponse string `json:"enriched_response"`
}

type batchRequest struct {
	Queries []string `json:"queries"`
	Label   string   `json:"label,omitempty"`
}

type batchResponse struct {
	Answers []*schema.Answer `json:"answers"`
}

type ingestResponse struct {
	SourceFile string `json:"source_file"`
	Chunks     int    `json:"chunks"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}

	label := classifier.OrDefault(req.Label, req.Query)
	ans, err := s.engine.Generate(r.Context(), req.Query, label)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleSimilarQuestions(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}

	similar, err := s.engine.SimilarQuestions(r.Context(), req.Query, req.TopN)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if similar == nil {
		similar = []schema.SimilarQuestion{}
	}
	writeJSON(w, http.StatusOK, similarQuestionsResponse{Query: req.Query, SimilarQuestions: similar})
}

func (s *Server) handleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	var req saveAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.engine.SaveAnswer(req.Query, req.Answer); err != nil {
		if errors.Is(err, pipeline.ErrBlankQuery) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Answer saved successfully."})
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Query == "" || req.ResponseToEnrich == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query and response_to_enrich are required"})
		return
	}

	enriched := s.engine.Enrich(r.Context(), req.Query, req.ResponseToEnrich)
	writeJSON(w, http.StatusOK, enrichResponse{EnrichedResponse: enriched})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "a PDF file upload is required"})
		return
	}
	defer file.Close()

	dir, err := os.MkdirTemp("", "ingest")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	dst.Close()

	chunks, err := s.ingestor.IngestPDF(r.Context(), path)
	if err != nil {
		logger.Errorf("api: ingest of %s failed: %v", header.Filename, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{SourceFile: filepath.Base(header.Filename), Chunks: chunks})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Queries) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "queries must not be empty"})
		return
	}

	answers, err := s.engine.Batch(r.Context(), req.Queries, req.Label)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Answers: answers})
}

func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, pipeline.ErrBlankQuery) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if qastore.IsPersistence(err) {
		logger.Errorf("api: persistence failure: %v", err)
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("api: encode response: %v", err)
	}
}
