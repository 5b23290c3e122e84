// Package chi exposes the pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
	logpkg "github.com/arclab-ai/researchpipe/internal/logger"
)

// PipelineRunner executes one full research pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context) (domain.RunResult, error)
}

// Evaluator grounds hypotheses and gap analyses against the index.
type Evaluator interface {
	Hypotheses(ctx context.Context, hypotheses []string, k int, threshold float64) (map[string]domain.EvaluationRecord, error)
	GapAnalysis(ctx context.Context, gapText string, k int) (float64, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over one configured pipeline and evaluator.
type Server struct {
	pipeline      PipelineRunner
	evaluator     Evaluator
	health        domain.HealthChecker
	defaultK      int
	defaultThresh float64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultK and defaultThreshold fill
// in evaluation requests that omit them.
func NewServer(
	pipeline PipelineRunner,
	evaluator Evaluator,
	health domain.HealthChecker,
	defaultK int,
	defaultThreshold float64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:      pipeline,
		evaluator:     evaluator,
		health:        health,
		defaultK:      defaultK,
		defaultThresh: defaultThreshold,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, "index_not_found"),
		sentinelHandler(domain.ErrNoDocuments, http.StatusBadRequest, "no_documents"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, "vector_dim_mismatch"),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"),
		sentinelHandler(domain.ErrEmptyCompletion, http.StatusBadGateway, "empty_completion"),
		sentinelHandler(domain.ErrModelProviderError, http.StatusBadGateway, "model_provider_error"),
	}
	return s
}

// Router builds the HTTP routing table. apiKeys enables bearer auth when
// non-empty.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/healthz", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/v1/runs", s.CreateRun)
	r.Post("/v1/evaluations", s.CreateEvaluation)

	return r
}

// RunResponse is the body of a completed pipeline run.
type RunResponse struct {
	Hypotheses  []string `json:"hypotheses"`
	Validations []string `json:"validations"`
	Gaps        string   `json:"gaps"`
}

// CreateRun handles POST /v1/runs.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.pipeline.Run(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Hypotheses:  orEmpty(result.Hypotheses),
		Validations: orEmpty(result.Validations),
		Gaps:        result.Gaps,
	})
}

// EvaluationRequest asks for grounding of hypotheses and/or a gap text.
type EvaluationRequest struct {
	Hypotheses       []string `json:"hypotheses"`
	GapText          string   `json:"gap_text,omitempty"`
	K                int      `json:"k,omitempty"`
	SupportThreshold *float64 `json:"support_threshold,omitempty"`
}

// EvaluationRecord is the JSON shape of one grounded hypothesis.
type EvaluationRecord struct {
	AvgSimilarity float64   `json:"avg_similarity"`
	TopKScores    []float64 `json:"top_k_scores"`
	Supported     bool      `json:"supported"`
}

// EvaluationResponse carries hypothesis records and, when a gap text was
// supplied, its bare grounding average.
type EvaluationResponse struct {
	Records      map[string]EvaluationRecord `json:"records"`
	GapGrounding *float64                    `json:"gap_grounding,omitempty"`
}

// CreateEvaluation handles POST /v1/evaluations.
func (s *Server) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if len(req.Hypotheses) == 0 && req.GapText == "" {
		writeError(w, http.StatusBadRequest, "validation_failed",
			"at least one of hypotheses or gap_text is required")
		return
	}

	k := req.K
	if k <= 0 {
		k = s.defaultK
	}
	threshold := s.defaultThresh
	if req.SupportThreshold != nil {
		threshold = *req.SupportThreshold
	}

	resp := EvaluationResponse{Records: map[string]EvaluationRecord{}}

	if len(req.Hypotheses) > 0 {
		records, err := s.evaluator.Hypotheses(r.Context(), req.Hypotheses, k, threshold)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		for text, rec := range records {
			resp.Records[text] = EvaluationRecord{
				AvgSimilarity: rec.AvgSimilarity,
				TopKScores:    orEmpty(rec.TopKScores),
				Supported:     rec.Supported,
			}
		}
	}

	if req.GapText != "" {
		avg, err := s.evaluator.GapAnalysis(r.Context(), req.GapText, k)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.GapGrounding = &avg
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := s.health.HealthCheck(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]string{"status": status})
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrIndexNotFound,
		domain.ErrNoDocuments,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrEmptyCompletion,
		domain.ErrModelProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
