package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
)

type stubSource struct {
	series map[string]models.PriceSeries
	beta   *float64
	window domrepo.Window
}

func (s *stubSource) FetchHistory(_ context.Context, symbol string, w domrepo.Window) (models.PriceSeries, error) {
	s.window = w
	if symbol == "BOOM" {
		return models.PriceSeries{}, errors.New("upstream down")
	}
	return s.series[symbol], nil
}

func (s *stubSource) FetchMetadata(_ context.Context, symbol string) (models.SymbolMetadata, error) {
	return models.SymbolMetadata{Symbol: symbol, Name: "Apple Inc.", Currency: "USD", Beta: s.beta}, nil
}

func appleSource() *stubSource {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	beta := 1.234
	return &stubSource{
		beta: &beta,
		series: map[string]models.PriceSeries{
			"AAPL": {Symbol: "AAPL", Bars: []models.Bar{
				{Date: day, Open: 99, High: 103, Low: 98, Close: 100, Volume: 1000},
				{Date: day.AddDate(0, 0, 1), Open: 100, High: 105, Low: 99, Close: 102, Volume: 2000},
				{Date: day.AddDate(0, 0, 2), Open: 102, High: 104, Low: 97.5, Close: 101, Volume: 3000},
			}},
		},
	}
}

func TestAnswerRunsToolLoop(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		switch n := atomic.AddInt32(&calls, 1); n {
		case 1:
			if len(req.Tools) != 2 || req.Tools[0].Name != toolPriceHistory || req.Tools[1].Name != toolBeta {
				t.Errorf("tools = %+v", req.Tools)
			}
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Checking."},` +
				`{"type":"tool_use","id":"tu_1","name":"get_price_history","input":{"symbol":"aapl","window":"5d"}},` +
				`{"type":"tool_use","id":"tu_2","name":"get_beta","input":{"symbol":"AAPL"}}],"stop_reason":"tool_use"}`))
		case 2:
			if len(req.Messages) != 3 || req.Messages[1].Role != "assistant" || req.Messages[2].Role != "user" {
				t.Errorf("messages = %+v", req.Messages)
				http.Error(w, "bad", http.StatusBadRequest)
				return
			}
			if replay := req.Messages[1].Content; len(replay) != 3 || replay[1].ID != "tu_1" || len(replay[1].Input) == 0 {
				t.Errorf("assistant replay = %+v", replay)
			}
			results := req.Messages[2].Content
			if len(results) != 2 || results[0].Type != "tool_result" || results[0].ToolUseID != "tu_1" || results[1].ToolUseID != "tu_2" {
				t.Errorf("tool results = %+v", results)
				http.Error(w, "bad", http.StatusBadRequest)
				return
			}
			if results[0].IsError || results[1].IsError {
				t.Errorf("unexpected tool error: %+v", results)
			}
			var hist historyOut
			if err := json.Unmarshal([]byte(results[0].Content), &hist); err != nil {
				t.Errorf("history result: %v", err)
			}
			if hist.Symbol != "AAPL" || hist.LatestClose != 101 || hist.ChangePercent != -0.98 ||
				hist.PeriodHigh != 105 || hist.PeriodLow != 97.5 || len(hist.Bars) != 3 || hist.Bars[2].Date != "2024-03-03" {
				t.Errorf("history = %+v", hist)
			}
			var beta betaOut
			if err := json.Unmarshal([]byte(results[1].Content), &beta); err != nil || beta.Beta == nil || *beta.Beta != 1.23 {
				t.Errorf("beta result = %s (%v)", results[1].Content, err)
			}
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"AAPL closed at 101."}],"stop_reason":"end_turn"}`))
		default:
			t.Errorf("unexpected call %d", n)
		}
	}))
	defer srv.Close()

	src := appleSource()
	got, err := NewClient(testConfig(srv.URL, "sk"), src, nil).Answer(context.Background(), "How is AAPL doing?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got != "AAPL closed at 101." {
		t.Fatalf("answer = %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d", calls)
	}
	if src.window != domrepo.Window5d {
		t.Fatalf("window = %q", src.window)
	}
}

func TestAnswerStopsAfterMaxToolRounds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use","id":"tu","name":"get_beta","input":{"symbol":"AAPL"}}],"stop_reason":"tool_use"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(testConfig(srv.URL, "sk"), appleSource(), nil).Answer(context.Background(), "q"); err == nil {
		t.Fatalf("expected error when the model never stops calling tools")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestToolboxReportsLookupFailures(t *testing.T) {
	tb := &toolbox{src: appleSource()}
	cases := []struct {
		name  string
		tool  string
		input string
	}{
		{"unknown symbol", toolPriceHistory, `{"symbol":"ZZZZINVALID"}`},
		{"upstream error", toolPriceHistory, `{"symbol":"BOOM"}`},
		{"missing symbol", toolBeta, `{}`},
		{"malformed input", toolBeta, `{"symbol":`},
		{"unknown tool", "get_options_chain", `{"symbol":"AAPL"}`},
	}
	for _, tc := range cases {
		out, isErr := tb.run(context.Background(), tc.tool, json.RawMessage(tc.input))
		if !isErr || out == "" {
			t.Fatalf("%s: got %q, error=%v", tc.name, out, isErr)
		}
	}
}

func TestToolboxDefaultsWindow(t *testing.T) {
	src := appleSource()
	tb := &toolbox{src: src}
	if _, isErr := tb.run(context.Background(), toolPriceHistory, json.RawMessage(`{"symbol":"AAPL","window":"10y"}`)); isErr {
		t.Fatalf("unexpected error")
	}
	if src.window != domrepo.Window1mo {
		t.Fatalf("window = %q, want %q", src.window, domrepo.Window1mo)
	}
}
