package api

import (
	"errors"
	"time"

	"FinAgent/internal/domain/models"
	imetrics "FinAgent/internal/service/metrics"
	xhttp "FinAgent/pkg/http"
	xlogger "FinAgent/pkg/logger"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	base
	uc DashboardAssembler
}

func NewDashboardHandler(logger *xlogger.Logger, m *imetrics.Endpoints, uc DashboardAssembler) *DashboardHandler {
	return &DashboardHandler{base: newBase(logger, m), uc: uc}
}

// Dashboard handles GET /dashboard?ticker=.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	start := time.Now()
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Observe("dashboard", start, "validation")
		return xhttp.UnprocessableResponse(c, verr)
	}

	snap, err := h.uc.Assemble(c.Request().Context(), req.Ticker)
	if err != nil {
		h.metrics.Observe("dashboard", start, errorKind(err))
		return xhttp.AppErrorResponse(c, dashboardAppError(err))
	}

	h.metrics.Observe("dashboard", start, "")
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.JSONResponse(c, NewDashboardResponse(snap))
}

// dashboardAppError maps assembler errors onto transport errors.
func dashboardAppError(err error) *xhttp.AppError {
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		return xhttp.NotFoundErrorf("%s not found", nf.Ticker).WithParam("ticker", nf.Ticker).WithError(err)
	}
	return xhttp.UpstreamError("Failed to load dashboard data").WithError(err)
}

func errorKind(err error) string {
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		return "not_found"
	}
	return "upstream"
}
