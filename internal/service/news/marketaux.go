package news

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/pkg/util"
)

// MarketAuxClient reads financial news from marketaux.com.
type MarketAuxClient struct {
	client *resty.Client
	apiKey string
}

func NewMarketAuxClient(baseURL, apiKey string, timeout time.Duration) *MarketAuxClient {
	return &MarketAuxClient{client: newRestClient(baseURL, timeout), apiKey: apiKey}
}

func (c *MarketAuxClient) Name() string { return "marketaux" }

type marketAuxResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		PublishedAt string `json:"published_at"`
		Entities    []struct {
			Symbol         string   `json:"symbol"`
			SentimentScore *float64 `json:"sentiment_score"`
		} `json:"entities"`
	} `json:"data"`
}

func (c *MarketAuxClient) Fetch(ctx context.Context, q models.NewsQuery) ([]models.NewsItem, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := map[string]string{
		"api_token": c.apiKey,
		"language":  "en",
		"limit":     strconv.Itoa(q.Limit),
	}
	if q.Region == models.RegionUS {
		params["countries"] = "us"
	}
	if q.Ticker != "" {
		params["symbols"] = q.Ticker
	}

	var body marketAuxResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get("/news/all")
	if err != nil {
		return nil, fmt.Errorf("marketaux: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("marketaux", resp)
	}

	items := make([]models.NewsItem, 0, len(body.Data))
	for _, d := range body.Data {
		published, ok := util.ParseTime(d.PublishedAt)
		if !ok {
			continue
		}
		src := d.Source
		if src == "" {
			src = "MarketAux"
		}
		item := models.NewsItem{
			Title:         d.Title,
			Description:   d.Description,
			URL:           d.URL,
			Source:        src,
			PublishedDate: published,
		}
		var sum float64
		var n int
		for _, e := range d.Entities {
			item.Tickers = append(item.Tickers, e.Symbol)
			if e.SentimentScore != nil {
				sum += *e.SentimentScore
				n++
			}
		}
		if n > 0 {
			avg := sum / float64(n)
			item.Sentiment = &avg
		}
		items = append(items, item)
	}
	return items, nil
}

var _ domrepo.NewsProvider = (*MarketAuxClient)(nil)
