package api

import (
	"time"

	"FinAgent/internal/domain/models"
	imetrics "FinAgent/internal/service/metrics"
	xhttp "FinAgent/pkg/http"
	xlogger "FinAgent/pkg/logger"

	"github.com/labstack/echo/v4"
)

type NewsHandler struct {
	base
	uc NewsFetcher
}

func NewNewsHandler(logger *xlogger.Logger, m *imetrics.Endpoints, uc NewsFetcher) *NewsHandler {
	return &NewsHandler{base: newBase(logger, m), uc: uc}
}

// News handles GET /news?region=&ticker=&limit=.
func (h *NewsHandler) News(c echo.Context) error {
	start := time.Now()
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Observe("news", start, "validation")
		return xhttp.UnprocessableResponse(c, verr)
	}
	region, err := models.ParseRegion(req.Region)
	if err != nil {
		h.metrics.Observe("news", start, "validation")
		return xhttp.UnprocessableResponse(c, []xhttp.ValidationError{{Code: "ERR_ONEOF", Field: "region", Message: err.Error()}})
	}

	h.logger.Info("fetching news",
		xlogger.String("region", string(region)),
		xlogger.String("ticker", req.Ticker),
		xlogger.Int("limit", req.Limit),
	)
	res := h.uc.Get(c.Request().Context(), models.NewsQuery{Region: region, Ticker: req.Ticker, Limit: req.Limit})

	h.metrics.Observe("news", start, "")
	return xhttp.JSONResponse(c, NewNewsResponse(res))
}
