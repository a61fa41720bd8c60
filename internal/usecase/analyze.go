package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domsvc "FinAgent/internal/domain/service"
	"FinAgent/pkg/logger"
)

// ErrAgentUnavailable means no query agent is configured.
var ErrAgentUnavailable = errors.New("agent not initialized")

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

type AnalyzeUseCase struct {
	agent domsvc.QueryAgent
	log   *logger.Logger
	now   func() time.Time
}

func NewAnalyzeUseCase(agent domsvc.QueryAgent, log *logger.Logger) *AnalyzeUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &AnalyzeUseCase{agent: agent, log: log, now: time.Now}
}

// Ready reports whether queries can be answered.
func (uc *AnalyzeUseCase) Ready() bool {
	return uc.agent != nil && uc.agent.Ready()
}

// Analyze forwards the query to the agent, prefixed with the current time.
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, query string) (string, error) {
	if !uc.Ready() {
		return "", ErrAgentUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	preview := query
	if len(preview) > 50 {
		preview = preview[:50]
	}
	uc.log.Info("starting analysis", logger.String("query", preview))

	prompt := fmt.Sprintf("[Current date and time: %s]\n\n%s", uc.now().Format("2006-01-02 15:04 MST"), query)
	answer, err := uc.agent.Answer(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("agent answer: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "No response received from the agent. Please try again.", nil
	}
	return answer, nil
}
