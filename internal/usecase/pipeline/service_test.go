package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

type mockBuilder struct {
	text  string
	gotK  int
	err   error
	calls int
}

func (m *mockBuilder) Build(_ context.Context, k int) (string, error) {
	m.calls++
	m.gotK = k
	return m.text, m.err
}

type mockOrchestrator struct {
	gotContext string
	result     domain.RunResult
	err        error
}

func (m *mockOrchestrator) Run(_ context.Context, contextText string) (domain.RunResult, error) {
	m.gotContext = contextText
	return m.result, m.err
}

func TestRun_PassesContextThrough(t *testing.T) {
	builder := &mockBuilder{text: "summary one\n\nsummary two"}
	want := domain.RunResult{
		Hypotheses:  []string{"h1", "h2"},
		Validations: []string{"v1", "v2"},
		Gaps:        "gap text",
	}
	orch := &mockOrchestrator{result: want}

	svc := New(builder, orch, 3, zap.NewNop())
	got, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if builder.gotK != 3 {
		t.Errorf("retrieval k = %d, want 3", builder.gotK)
	}
	if orch.gotContext != builder.text {
		t.Errorf("orchestrator saw %q, want %q", orch.gotContext, builder.text)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %+v, want %+v", got, want)
	}
}

func TestRun_EmptyContextIsStillARun(t *testing.T) {
	builder := &mockBuilder{text: ""}
	orch := &mockOrchestrator{result: domain.RunResult{Gaps: "g"}}

	svc := New(builder, orch, 3, zap.NewNop())
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("empty context must not abort the run: %v", err)
	}
}

func TestRun_BuildErrorAborts(t *testing.T) {
	buildErr := errors.New("index down")
	svc := New(&mockBuilder{err: buildErr}, &mockOrchestrator{}, 3, zap.NewNop())

	_, err := svc.Run(context.Background())
	if !errors.Is(err, buildErr) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestRun_AgentErrorAborts(t *testing.T) {
	agentErr := errors.New("provider down")
	svc := New(&mockBuilder{text: "ctx"}, &mockOrchestrator{err: agentErr}, 3, zap.NewNop())

	_, err := svc.Run(context.Background())
	if !errors.Is(err, agentErr) {
		t.Errorf("expected agent error, got %v", err)
	}
}
