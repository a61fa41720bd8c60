package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinAgent/internal/domain/models"

	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, asm DashboardAssembler, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestEcho(asm, &stubNews{}, &stubAnalyzer{}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestStreamSendsSnapshots(t *testing.T) {
	conn := dialStream(t, &stubAssembler{snap: sampleSnapshot()}, "?ticker=AAPL&interval=1")

	for i := 0; i < 2; i++ {
		var frame StreamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if frame.Type != "snapshot" || frame.Ticker != "AAPL" || frame.Data == nil {
			t.Fatalf("frame %d = %+v", i, frame)
		}
		if frame.Data.RiskScore.Level != "Moderate" {
			t.Fatalf("risk level = %q", frame.Data.RiskScore.Level)
		}
	}
}

func TestStreamClosesOnUnknownTicker(t *testing.T) {
	conn := dialStream(t, &stubAssembler{err: &models.NotFoundError{Ticker: "ZZZZINVALID"}}, "?ticker=ZZZZINVALID")

	var frame StreamFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Type != "error" || frame.Ticker != "ZZZZINVALID" || frame.Error == "" {
		t.Fatalf("frame = %+v", frame)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestStreamIntervalClamp(t *testing.T) {
	h := NewStreamHandler(nil, nil, &stubAssembler{}, 30*time.Second, 5*time.Second)
	if got := h.intervalFor(0); got != 30*time.Second {
		t.Fatalf("default = %v", got)
	}
	if got := h.intervalFor(1); got != 5*time.Second {
		t.Fatalf("clamped = %v", got)
	}
	if got := h.intervalFor(60); got != time.Minute {
		t.Fatalf("explicit = %v", got)
	}
}
