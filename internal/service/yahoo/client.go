package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"

	"FinAgent/internal/domain/models"
	"FinAgent/internal/domain/repository"
	"FinAgent/pkg/config"
	xhttp "FinAgent/pkg/http"
	"FinAgent/pkg/logger"
)

// Client reads daily history from the Yahoo Finance v8 chart API and
// symbol metadata from the quoteSummary API.
type Client struct {
	chartURL   string
	summaryURL string
	http       *xhttp.Client
	crumbs     *crumbSource
	log        *logger.Logger
}

// NewClient builds a client from the market_data config section.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	jar, _ := cookiejar.New(nil)
	hc := xhttp.NewClient(
		xhttp.WithTimeout(cfg.MarketData.FetchTimeout),
		xhttp.WithHeader("User-Agent", cfg.MarketData.UserAgent),
		xhttp.WithHeader("Accept", "application/json"),
		xhttp.WithCookieJar(jar),
	)
	summaryURL := strings.TrimRight(cfg.MarketData.SummaryURL, "/")
	return &Client{
		chartURL:   strings.TrimRight(cfg.MarketData.ChartURL, "/"),
		summaryURL: summaryURL,
		http:       hc,
		crumbs: &crumbSource{
			cookieURL: cfg.MarketData.CookieURL,
			crumbURL:  summaryURL + "/v1/test/getcrumb",
			http:      hc,
		},
		log: log,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchHistory returns daily bars for symbol over window, ascending by date.
// Unknown symbols yield an empty series and a nil error.
func (c *Client) FetchHistory(ctx context.Context, symbol string, window repository.Window) (models.PriceSeries, error) {
	series := models.PriceSeries{Symbol: symbol}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.chartURL, url.PathEscape(symbol)),
		QueryParams: map[string][]string{
			"range":          {string(window)},
			"interval":       {"1d"},
			"includePrePost": {"false"},
		},
	}, &resp)
	if err != nil {
		if isNotFound(err) {
			c.log.Debug("yahoo: unknown symbol", logger.String("symbol", symbol))
			return series, nil
		}
		return series, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	if e := resp.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return series, nil
		}
		return series, fmt.Errorf("yahoo chart %s: %s - %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return series, nil
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 || len(res.Timestamp) == 0 {
		return series, nil
	}
	q := res.Indicators.Quote[0]
	n := len(res.Timestamp)
	if len(q.Close) != n || len(q.Open) != n || len(q.High) != n || len(q.Low) != n {
		return series, fmt.Errorf("yahoo chart %s: misaligned quote arrays", symbol)
	}

	bars := make([]models.Bar, 0, n)
	dropped := 0
	for i, ts := range res.Timestamp {
		if q.Close[i] == nil || q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || *q.Close[i] <= 0 {
			dropped++
			continue
		}
		var vol int64
		if i < len(q.Volume) && q.Volume[i] != nil {
			vol = int64(*q.Volume[i])
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   *q.Open[i],
			High:   *q.High[i],
			Low:    *q.Low[i],
			Close:  *q.Close[i],
			Volume: vol,
		})
	}
	if dropped > 0 {
		c.log.Debug("yahoo: dropped incomplete bars", logger.String("symbol", symbol), logger.Int("dropped", dropped))
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	series.Bars = bars
	return series, nil
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				Beta rawValue `json:"beta"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				Beta rawValue `json:"beta"`
			} `json:"defaultKeyStatistics"`
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
				Currency  string `json:"currency"`
			} `json:"price"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchMetadata returns the symbol's name, currency and beta. Beta is nil when unavailable.
func (c *Client) FetchMetadata(ctx context.Context, symbol string) (models.SymbolMetadata, error) {
	meta := models.SymbolMetadata{Symbol: symbol}

	resp, err := c.summary(ctx, symbol)
	if isUnauthorized(err) {
		// the crumb expired with its session; fetch a fresh pair once
		c.crumbs.reset()
		resp, err = c.summary(ctx, symbol)
	}
	if err != nil {
		if isNotFound(err) {
			return meta, nil
		}
		return meta, fmt.Errorf("yahoo summary %s: %w", symbol, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return meta, fmt.Errorf("yahoo summary %s: %s - %s", symbol, e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return meta, nil
	}

	r := resp.QuoteSummary.Result[0]
	meta.Name = r.Price.LongName
	if meta.Name == "" {
		meta.Name = r.Price.ShortName
	}
	meta.Currency = r.Price.Currency
	switch {
	case r.SummaryDetail.Beta.Raw != nil:
		meta.Beta = r.SummaryDetail.Beta.Raw
	case r.DefaultKeyStatistics.Beta.Raw != nil:
		meta.Beta = r.DefaultKeyStatistics.Beta.Raw
	}
	return meta, nil
}

func (c *Client) summary(ctx context.Context, symbol string) (*summaryResponse, error) {
	params := map[string][]string{
		"modules": {"summaryDetail,defaultKeyStatistics,price"},
	}
	crumb, err := c.crumbs.get(ctx)
	if err != nil {
		c.log.Debug("yahoo: no crumb, calling quoteSummary without one", logger.Error(err))
	} else {
		params["crumb"] = []string{crumb}
	}

	var resp summaryResponse
	err = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/v10/finance/quoteSummary/%s", c.summaryURL, url.PathEscape(symbol)),
		QueryParams: params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func isUnauthorized(err error) bool {
	var se *xhttp.StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

func isNotFound(err error) bool {
	var se *xhttp.StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

var _ repository.MarketDataSource = (*Client)(nil)
