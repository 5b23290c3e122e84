package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

type stubPipeline struct {
	result domain.RunResult
	err    error
}

func (p *stubPipeline) Run(context.Context) (domain.RunResult, error) {
	return p.result, p.err
}

type stubEvaluator struct {
	records map[string]domain.EvaluationRecord
	gapAvg  float64
	gotK    int
	gotThr  float64
	err     error
}

func (e *stubEvaluator) Hypotheses(
	_ context.Context, _ []string, k int, threshold float64,
) (map[string]domain.EvaluationRecord, error) {
	e.gotK, e.gotThr = k, threshold
	return e.records, e.err
}

func (e *stubEvaluator) GapAnalysis(_ context.Context, _ string, k int) (float64, error) {
	e.gotK = k
	return e.gapAvg, e.err
}

type stubHealth struct{ err error }

func (h *stubHealth) HealthCheck(context.Context) error { return h.err }

func newTestServer(p PipelineRunner, e Evaluator, h domain.HealthChecker) http.Handler {
	return NewServer(p, e, h, 3, 0.5, zap.NewNop()).Router(nil)
}

func TestCreateRun(t *testing.T) {
	pipeline := &stubPipeline{result: domain.RunResult{
		Hypotheses:  []string{"h1", "h2"},
		Validations: []string{"v1", "v2"},
		Gaps:        "gaps",
	}}
	router := newTestServer(pipeline, &stubEvaluator{}, &stubHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/runs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Hypotheses) != 2 || len(resp.Validations) != 2 || resp.Gaps != "gaps" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateRun_ProviderErrorMapsToBadGateway(t *testing.T) {
	pipeline := &stubPipeline{err: domain.ErrModelProviderError}
	router := newTestServer(pipeline, &stubEvaluator{}, &stubHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/runs", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "model_provider_error" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestCreateRun_UnknownErrorIsOpaque500(t *testing.T) {
	pipeline := &stubPipeline{err: errors.New("secret connection string leaked")}
	router := newTestServer(pipeline, &stubEvaluator{}, &stubHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/runs", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("connection string")) {
		t.Error("internal error details must not reach the client")
	}
}

func TestCreateEvaluation_DefaultsApplied(t *testing.T) {
	eval := &stubEvaluator{records: map[string]domain.EvaluationRecord{
		"h1": {AvgSimilarity: 0.6, TopKScores: []float64{0.7, 0.5}, Supported: true},
	}}
	router := newTestServer(&stubPipeline{}, eval, &stubHealth{})

	body := bytes.NewBufferString(`{"hypotheses": ["h1"]}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/evaluations", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if eval.gotK != 3 || eval.gotThr != 0.5 {
		t.Errorf("defaults not applied: k=%d threshold=%f", eval.gotK, eval.gotThr)
	}
	var resp EvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Records["h1"].Supported {
		t.Errorf("record lost in translation: %+v", resp.Records)
	}
	if resp.GapGrounding != nil {
		t.Error("no gap text was sent, gap_grounding must be omitted")
	}
}

func TestCreateEvaluation_GapTextOnly(t *testing.T) {
	eval := &stubEvaluator{gapAvg: 0.12}
	router := newTestServer(&stubPipeline{}, eval, &stubHealth{})

	body := bytes.NewBufferString(`{"gap_text": "open problems", "k": 5}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/evaluations", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if eval.gotK != 5 {
		t.Errorf("k override not applied: %d", eval.gotK)
	}
	var resp EvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.GapGrounding == nil || *resp.GapGrounding != 0.12 {
		t.Errorf("gap_grounding = %v, want 0.12", resp.GapGrounding)
	}
}

func TestCreateEvaluation_EmptyRequestRejected(t *testing.T) {
	router := newTestServer(&stubPipeline{}, &stubEvaluator{}, &stubHealth{})

	body := bytes.NewBufferString(`{}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/evaluations", body))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestServer(&stubPipeline{}, &stubEvaluator{}, &stubHealth{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("provider down", func(t *testing.T) {
		router := newTestServer(&stubPipeline{}, &stubEvaluator{}, &stubHealth{err: errors.New("down")})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
