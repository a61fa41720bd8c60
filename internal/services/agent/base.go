package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	xhttp "FinAgent/pkg/http"
)

// httpBase centralizes client construction and JSON POST handling for the model API.
type httpBase struct {
	baseURL string
	headers map[string]string
	client  *xhttp.Client
}

func newHTTPBase(baseURL string, timeout time.Duration, headers map[string]string) *httpBase {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &httpBase{
		baseURL: baseURL,
		headers: headers,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// postJSON posts payload to path under baseURL and decodes JSON into dest.
func (b *httpBase) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("agent http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     b.baseURL + path,
		Headers: b.headers,
		Body:    payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// postJSONWithRetry retries transient failures (transport errors, 429, 5xx) with linear backoff.
func (b *httpBase) postJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.postJSON(ctx, path, payload, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.postJSON(ctx, path, payload, dest)
		if err == nil || !retryable(err) || i == attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 500 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
