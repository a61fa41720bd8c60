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

const removedTitle = "[Removed]"

// NewsAPIClient reads business headlines from newsapi.org.
// Without a ticker it returns Indian business headlines; with one it searches all articles.
type NewsAPIClient struct {
	client *resty.Client
	apiKey string
}

func NewNewsAPIClient(baseURL, apiKey string, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{client: newRestClient(baseURL, timeout), apiKey: apiKey}
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsAPIClient) Fetch(ctx context.Context, q models.NewsQuery) ([]models.NewsItem, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	path := "/top-headlines"
	params := map[string]string{
		"apiKey":   c.apiKey,
		"category": "business",
		"country":  "in",
		"pageSize": strconv.Itoa(q.Limit),
	}
	if q.Ticker != "" {
		path = "/everything"
		params = map[string]string{
			"apiKey":   c.apiKey,
			"q":        fmt.Sprintf("%s AND (stock OR market OR finance)", q.Ticker),
			"sortBy":   "publishedAt",
			"language": "en",
			"pageSize": strconv.Itoa(q.Limit),
		}
	}

	var body newsAPIResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("newsapi", resp)
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("newsapi: %s: %s", body.Code, body.Message)
	}

	items := make([]models.NewsItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == removedTitle {
			continue
		}
		src := a.Source.Name
		if src == "" {
			src = "NewsAPI"
		}
		items = append(items, models.NewsItem{
			Title:         a.Title,
			Description:   a.Description,
			URL:           a.URL,
			Source:        src,
			PublishedDate: util.ParseTimeDefault(a.PublishedAt, time.Time{}),
		})
	}
	return items, nil
}

var _ domrepo.NewsProvider = (*NewsAPIClient)(nil)
