package api

import (
	"context"

	"FinAgent/internal/domain/models"
	imetrics "FinAgent/internal/service/metrics"
	xhttp "FinAgent/pkg/http"
	xlogger "FinAgent/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardAssembler builds a dashboard snapshot for one ticker.
type DashboardAssembler interface {
	Assemble(ctx context.Context, ticker string) (*models.DashboardSnapshot, error)
}

// NewsFetcher returns region news. It never fails; provider errors yield an empty list.
type NewsFetcher interface {
	Get(ctx context.Context, q models.NewsQuery) models.NewsResult
}

// Analyzer answers free-form market questions.
type Analyzer interface {
	Ready() bool
	Analyze(ctx context.Context, query string) (string, error)
}

// Router registers every public endpoint.
type Router struct {
	dashboard *DashboardHandler
	news      *NewsHandler
	analyze   *AnalyzeHandler
	stream    *StreamHandler
}

func NewRouter(dashboard *DashboardHandler, news *NewsHandler, analyze *AnalyzeHandler, stream *StreamHandler) *Router {
	return &Router{dashboard: dashboard, news: news, analyze: analyze, stream: stream}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.analyze.Health)
	e.GET("/dashboard", r.dashboard.Dashboard)
	e.GET("/news", r.news.News)
	e.POST("/analyze", r.analyze.Analyze)
	if r.stream != nil {
		e.GET("/ws/dashboard", r.stream.Stream)
	}
}

var _ xhttp.Handler = (*Router)(nil)

type base struct {
	logger  *xlogger.Logger
	metrics *imetrics.Endpoints
}

func newBase(logger *xlogger.Logger, m *imetrics.Endpoints) base {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return base{logger: logger, metrics: m}
}
