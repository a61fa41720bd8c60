package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"FinAgent/internal/domain/repository"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD"},
"timestamp":[1704326400,1704153600,1704240000,1704412800],
"indicators":{"quote":[{
 "open":[102,100,101,null],
 "high":[103,101,102,104],
 "low":[101,99,100,102],
 "close":[102.5,100.5,101.5,103],
 "volume":[3000,1000,2000,4000]}]}}],"error":null}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.MarketData.ChartURL = srv.URL
	cfg.MarketData.SummaryURL = srv.URL + "/"
	cfg.MarketData.FetchTimeout = 2 * time.Second
	cfg.MarketData.UserAgent = "test-agent"
	return NewClient(&cfg, logger.NewNop())
}

func TestFetchHistoryParsesSortsAndDropsIncompleteBars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("range") != "6mo" || r.URL.Query().Get("interval") != "1d" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(chartBody))
	})

	s, err := c.FetchHistory(context.Background(), "AAPL", repository.Window6mo)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("bars = %d, want 3 (null open dropped)", s.Len())
	}
	want := []float64{100.5, 101.5, 102.5}
	for i, b := range s.Bars {
		if b.Close != want[i] {
			t.Fatalf("bar %d close = %v, want %v", i, b.Close, want[i])
		}
		if i > 0 && !s.Bars[i-1].Date.Before(b.Date) {
			t.Fatalf("bars not ascending at %d", i)
		}
	}
	if s.Bars[2].Volume != 3000 {
		t.Fatalf("volume = %d", s.Bars[2].Volume)
	}
}

func TestFetchHistoryUnknownSymbolIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	s, err := c.FetchHistory(context.Background(), "ZZZZINVALID", repository.Window6mo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Empty() {
		t.Fatalf("expected empty series, got %d bars", s.Len())
	}
}

func TestFetchHistoryServerErrorFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := c.FetchHistory(context.Background(), "AAPL", repository.Window5d); err == nil {
		t.Fatalf("expected error")
	} else if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should carry status: %v", err)
	}
}

func TestFetchHistoryHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.FetchHistory(ctx, "AAPL", repository.Window5d); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestFetchMetadataBeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/test/getcrumb" {
			_, _ = w.Write([]byte("abc123"))
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("crumb") != "abc123" {
			t.Errorf("crumb = %q", r.URL.Query().Get("crumb"))
		}
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"summaryDetail":{"beta":{"raw":1.27,"fmt":"1.27"}},"price":{"longName":"Apple Inc.","currency":"USD"}}],"error":null}}`))
	})

	m, err := c.FetchMetadata(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if m.Beta == nil || *m.Beta != 1.27 {
		t.Fatalf("beta = %v", m.Beta)
	}
	if m.Name != "Apple Inc." || m.Currency != "USD" {
		t.Fatalf("meta = %+v", m)
	}
}

func TestFetchMetadataMissingBeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"summaryDetail":{},"price":{"shortName":"S&P 500"}}],"error":null}}`))
	})

	m, err := c.FetchMetadata(context.Background(), "^GSPC")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if m.Beta != nil {
		t.Fatalf("beta should be nil, got %v", *m.Beta)
	}
	if m.Name != "S&P 500" {
		t.Fatalf("name = %q", m.Name)
	}
}

func TestFetchMetadataUsesSessionCookieAndRefreshesCrumb(t *testing.T) {
	var crumbs, summaries int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/cookie":
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
			http.NotFound(w, r)
		case r.URL.Path == "/v1/test/getcrumb":
			if ck, err := r.Cookie("A3"); err != nil || ck.Value != "session" {
				http.Error(w, "no cookie", http.StatusUnauthorized)
				return
			}
			n := atomic.AddInt32(&crumbs, 1)
			_, _ = fmt.Fprintf(w, "crumb%d", n)
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			atomic.AddInt32(&summaries, 1)
			// the first crumb is treated as expired
			if r.URL.Query().Get("crumb") != "crumb2" {
				http.Error(w, `{"finance":{"error":{"code":"Unauthorized"}}}`, http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"defaultKeyStatistics":{"beta":{"raw":1.9}}}],"error":null}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	var cfg config.Config
	cfg.MarketData.ChartURL = srv.URL
	cfg.MarketData.SummaryURL = srv.URL
	cfg.MarketData.CookieURL = srv.URL + "/cookie"
	cfg.MarketData.FetchTimeout = 2 * time.Second
	c := NewClient(&cfg, nil)

	m, err := c.FetchMetadata(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if m.Beta == nil || *m.Beta != 1.9 {
		t.Fatalf("beta = %v", m.Beta)
	}
	if atomic.LoadInt32(&crumbs) != 2 || atomic.LoadInt32(&summaries) != 2 {
		t.Fatalf("crumbs = %d, summaries = %d", atomic.LoadInt32(&crumbs), atomic.LoadInt32(&summaries))
	}

	// the refreshed crumb is cached
	if _, err := c.FetchMetadata(context.Background(), "TSLA"); err != nil {
		t.Fatalf("second metadata: %v", err)
	}
	if atomic.LoadInt32(&crumbs) != 2 || atomic.LoadInt32(&summaries) != 3 {
		t.Fatalf("after reuse crumbs = %d, summaries = %d", atomic.LoadInt32(&crumbs), atomic.LoadInt32(&summaries))
	}
}

func TestFetchMetadataFailsAfterSecondUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/test/getcrumb" {
			_, _ = w.Write([]byte("stale"))
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	if _, err := c.FetchMetadata(context.Background(), "TSLA"); err == nil {
		t.Fatalf("expected error")
	}
}
