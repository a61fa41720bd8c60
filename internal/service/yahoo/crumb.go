package yahoo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	xhttp "FinAgent/pkg/http"
)

// crumbSource obtains the session cookie and crumb quoteSummary requires.
// The crumb is cached until reset after a 401.
type crumbSource struct {
	mu        sync.Mutex
	crumb     string
	cookieURL string
	crumbURL  string
	http      *xhttp.Client
}

func (s *crumbSource) get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crumb != "" {
		return s.crumb, nil
	}

	// the cookie endpoint answers 404 but still sets the session cookie
	if s.cookieURL != "" {
		resp, err := s.http.SendRequest(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: s.cookieURL})
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	var body []byte
	if err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: s.crumbURL}, &body); err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{ \n") {
		return "", fmt.Errorf("yahoo crumb: unexpected response %q", truncate(crumb, 40))
	}
	s.crumb = crumb
	return crumb, nil
}

func (s *crumbSource) reset() {
	s.mu.Lock()
	s.crumb = ""
	s.mu.Unlock()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
