package api

import (
	"errors"
	"time"

	"FinAgent/internal/domain/models"
	imetrics "FinAgent/internal/service/metrics"
	"FinAgent/internal/usecase"
	xhttp "FinAgent/pkg/http"
	xlogger "FinAgent/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AnalyzeHandler struct {
	base
	uc Analyzer
}

func NewAnalyzeHandler(logger *xlogger.Logger, m *imetrics.Endpoints, uc Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{base: newBase(logger, m), uc: uc}
}

// Health handles GET /health.
func (h *AnalyzeHandler) Health(c echo.Context) error {
	return xhttp.JSONResponse(c, HealthResponse{Status: "ok", AgentReady: h.uc.Ready()})
}

// Analyze handles POST /analyze.
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	start := time.Now()
	if !h.uc.Ready() {
		h.logger.Error("analysis requested but agent is not initialized")
		h.metrics.Observe("analyze", start, "unavailable")
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("Agent not initialized. Server may still be starting up."))
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Observe("analyze", start, "validation")
		return xhttp.UnprocessableResponse(c, verr)
	}

	h.logger.Info("analysis request", xlogger.String("query", preview(req.Query, 50)))
	answer, err := h.uc.Analyze(c.Request().Context(), req.Query)
	switch {
	case errors.Is(err, usecase.ErrEmptyQuery):
		h.metrics.Observe("analyze", start, "validation")
		return xhttp.UnprocessableResponse(c, []xhttp.ValidationError{{Code: "ERR_REQUIRED", Field: "query", Message: "query is required"}})
	case errors.Is(err, usecase.ErrAgentUnavailable):
		h.metrics.Observe("analyze", start, "unavailable")
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("Agent not initialized. Server may still be starting up."))
	case err != nil:
		h.logger.Error("analysis failed", xlogger.Error(err))
		h.metrics.Observe("analyze", start, "upstream")
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("Analysis failed").WithError(err))
	}

	h.metrics.Observe("analyze", start, "")
	return xhttp.JSONResponse(c, AnalyzeResponse{Query: req.Query, Response: answer})
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
