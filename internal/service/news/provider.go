package news

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when a provider has no API key.
var ErrNotConfigured = errors.New("news provider api key not configured")

func newRestClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

func statusError(provider string, resp *resty.Response) error {
	body := resp.String()
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Errorf("%s: status %d: %s", provider, resp.StatusCode(), body)
}
