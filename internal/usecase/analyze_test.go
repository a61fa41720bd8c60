package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FinAgent/pkg/logger"
)

type stubAgent struct {
	ready  bool
	answer string
	err    error
	prompt string
}

func (a *stubAgent) Ready() bool { return a.ready }

func (a *stubAgent) Answer(_ context.Context, q string) (string, error) {
	a.prompt = q
	return a.answer, a.err
}

func TestAnalyzeUnavailable(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubAgent{ready: false}, logger.NewNop())
	if uc.Ready() {
		t.Fatalf("should not be ready")
	}
	if _, err := uc.Analyze(context.Background(), "Analyze AAPL"); !errors.Is(err, ErrAgentUnavailable) {
		t.Fatalf("err = %v", err)
	}

	if NewAnalyzeUseCase(nil, nil).Ready() {
		t.Fatalf("nil agent should not be ready")
	}
}

func TestAnalyzePrefixesTimestamp(t *testing.T) {
	a := &stubAgent{ready: true, answer: "## AAPL\nlooks fine"}
	uc := NewAnalyzeUseCase(a, logger.NewNop())
	uc.now = func() time.Time { return time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC) }

	got, err := uc.Analyze(context.Background(), "  Analyze AAPL ")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got != a.answer {
		t.Fatalf("answer = %q", got)
	}
	if !strings.HasPrefix(a.prompt, "[Current date and time: 2024-03-05 09:30 UTC]") || !strings.HasSuffix(a.prompt, "\n\nAnalyze AAPL") {
		t.Fatalf("prompt = %q", a.prompt)
	}
}

func TestAnalyzeEmptyAnswerAndErrors(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubAgent{ready: true, answer: " "}, logger.NewNop())
	got, err := uc.Analyze(context.Background(), "q")
	if err != nil || !strings.Contains(got, "No response") {
		t.Fatalf("got %q, %v", got, err)
	}

	boom := errors.New("overloaded")
	uc = NewAnalyzeUseCase(&stubAgent{ready: true, err: boom}, logger.NewNop())
	if _, err := uc.Analyze(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	if _, err := uc.Analyze(context.Background(), "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("blank query err = %v", err)
	}
}
