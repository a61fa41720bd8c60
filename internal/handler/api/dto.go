package api

import (
	"time"

	"FinAgent/internal/domain/models"
	"FinAgent/pkg/util"
)

// Wire shapes for the public API. Floats are rounded to 2 dp here and nowhere earlier.

type TrendingStockDTO struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

type StockDetailsDTO struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previous_close"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Volume        int64   `json:"volume"`
}

type RiskAnalysisDTO struct {
	Score      int      `json:"score"`
	Level      string   `json:"level"`
	Reasons    []string `json:"reasons"`
	RSI        float64  `json:"rsi"`
	Volatility float64  `json:"volatility"`
	Beta       float64  `json:"beta"`
}

type DashboardResponse struct {
	Indices     map[string]float64            `json:"indices"`
	Trending    map[string][]TrendingStockDTO `json:"trending"`
	StockLookup StockDetailsDTO               `json:"stock_lookup"`
	RiskScore   RiskAnalysisDTO               `json:"risk_score"`
	VolumeAlert bool                          `json:"volume_alert"`
}

func NewDashboardResponse(s *models.DashboardSnapshot) DashboardResponse {
	indices := make(map[string]float64, len(s.Indices))
	for name, pct := range s.IndicesByName() {
		indices[name] = util.Round2(pct)
	}

	reasons := s.Risk.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	d := s.StockLookup
	return DashboardResponse{
		Indices: indices,
		Trending: map[string][]TrendingStockDTO{
			"gainers": trendingDTOs(s.Gainers),
			"losers":  trendingDTOs(s.Losers),
		},
		StockLookup: StockDetailsDTO{
			Ticker:        d.Ticker,
			Price:         util.Round2(d.Price),
			Change:        util.Round2(d.Change),
			ChangePercent: util.Round2(d.ChangePercent),
			Open:          util.Round2(d.Open),
			PreviousClose: util.Round2(d.PreviousClose),
			DayHigh:       util.Round2(d.DayHigh),
			DayLow:        util.Round2(d.DayLow),
			Volume:        d.Volume,
		},
		RiskScore: RiskAnalysisDTO{
			Score:      s.Risk.Score,
			Level:      string(s.Risk.Level),
			Reasons:    reasons,
			RSI:        util.Round2(s.Risk.RSI),
			Volatility: util.Round2(s.Risk.Volatility),
			Beta:       util.Round2(s.Risk.Beta),
		},
		VolumeAlert: s.VolumeAlert,
	}
}

func trendingDTOs(ms []models.ChangeMetric) []TrendingStockDTO {
	out := make([]TrendingStockDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, TrendingStockDTO{
			Ticker:        m.Symbol,
			Price:         util.Round2(m.LatestPrice),
			ChangePercent: util.Round2(m.ChangePercent),
		})
	}
	return out
}

type NewsItemDTO struct {
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	URL           string    `json:"url"`
	Source        string    `json:"source"`
	PublishedDate time.Time `json:"published_date"`
	Tickers       []string  `json:"tickers"`
	Sentiment     *string   `json:"sentiment"`
}

type NewsResponse struct {
	Region       string        `json:"region"`
	Items        []NewsItemDTO `json:"items"`
	TotalResults int           `json:"total_results"`
}

func NewNewsResponse(r models.NewsResult) NewsResponse {
	items := make([]NewsItemDTO, 0, len(r.Items))
	for _, it := range r.Items {
		dto := NewsItemDTO{
			Title:         it.Title,
			URL:           it.URL,
			Source:        it.Source,
			PublishedDate: it.PublishedDate.UTC(),
			Tickers:       it.Tickers,
			Sentiment:     sentimentLabel(it.Sentiment),
		}
		if dto.Tickers == nil {
			dto.Tickers = []string{}
		}
		if it.Description != "" {
			desc := it.Description
			dto.Description = &desc
		}
		items = append(items, dto)
	}
	return NewsResponse{Region: string(r.Region), Items: items, TotalResults: len(items)}
}

// sentimentLabel buckets a provider score in [-1, 1].
func sentimentLabel(score *float64) *string {
	if score == nil {
		return nil
	}
	label := "Neutral"
	switch {
	case *score >= 0.15:
		label = "Positive"
	case *score <= -0.15:
		label = "Negative"
	}
	return &label
}

type AnalyzeResponse struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	AgentReady bool   `json:"agent_ready"`
}

// StreamFrame is one websocket message on /ws/dashboard.
type StreamFrame struct {
	Type        string             `json:"type"`
	Ticker      string             `json:"ticker"`
	Data        *DashboardResponse `json:"data,omitempty"`
	Error       string             `json:"error,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}
