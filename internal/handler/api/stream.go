package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"FinAgent/internal/domain/models"
	imetrics "FinAgent/internal/service/metrics"
	xhttp "FinAgent/pkg/http"
	xlogger "FinAgent/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// StreamHandler pushes a fresh dashboard snapshot over a websocket every interval.
type StreamHandler struct {
	base
	uc          DashboardAssembler
	interval    time.Duration
	minInterval time.Duration
	upgrader    websocket.Upgrader
}

func NewStreamHandler(logger *xlogger.Logger, m *imetrics.Endpoints, uc DashboardAssembler, interval, minInterval time.Duration) *StreamHandler {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	if interval < minInterval {
		interval = minInterval
	}
	return &StreamHandler{
		base:        newBase(logger, m),
		uc:          uc,
		interval:    interval,
		minInterval: minInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// intervalFor clamps a client-requested interval in seconds.
func (h *StreamHandler) intervalFor(seconds int) time.Duration {
	if seconds <= 0 {
		return h.interval
	}
	d := time.Duration(seconds) * time.Second
	if d < h.minInterval {
		return h.minInterval
	}
	return d
}

// Stream handles GET /ws/dashboard?ticker=&interval=.
func (h *StreamHandler) Stream(c echo.Context) error {
	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.UnprocessableResponse(c, verr)
	}
	interval := h.intervalFor(req.Interval)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Drain client frames so close messages are processed; any read error ends the stream.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log := h.logger.With(
		xlogger.String("ticker", req.Ticker),
		xlogger.String("remote", c.RealIP()),
	)
	log.Info("dashboard stream opened", xlogger.Duration("interval", interval))
	defer log.Debug("dashboard stream closed")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !h.push(ctx, conn, log, req.Ticker) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// push sends one frame and reports whether the stream should continue.
func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, log *xlogger.Logger, ticker string) bool {
	start := time.Now()
	snap, err := h.uc.Assemble(ctx, ticker)
	if ctx.Err() != nil {
		return false
	}

	if err != nil {
		h.metrics.Observe("ws_dashboard", start, errorKind(err))
		frame := StreamFrame{Type: "error", Ticker: ticker, Error: err.Error(), GeneratedAt: time.Now().UTC()}

		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			frame.Ticker = nf.Ticker
			_ = h.write(conn, log, frame)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "ticker not found"),
				time.Now().Add(writeWait))
			return false
		}

		log.Warn("dashboard stream refresh failed", xlogger.Error(err))
		return h.write(conn, log, frame) == nil
	}

	h.metrics.Observe("ws_dashboard", start, "")
	data := NewDashboardResponse(snap)
	return h.write(conn, log, StreamFrame{Type: "snapshot", Ticker: snap.Ticker, Data: &data, GeneratedAt: snap.GeneratedAt.UTC()}) == nil
}

func (h *StreamHandler) write(conn *websocket.Conn, log *xlogger.Logger, frame StreamFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		log.Debug("websocket write failed", xlogger.Error(err))
		return err
	}
	return nil
}
