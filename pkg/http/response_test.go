package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestDataResponseWritesStatus(t *testing.T) {
	c, rec := newContext()
	if err := DataResponse(c, http.StatusNotFound, "missing"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
	var body APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusNotFound || body.Message != "Not Found" {
		t.Fatalf("body = %+v", body)
	}
}

func TestAppErrorResponseUnwrapsChain(t *testing.T) {
	c, rec := newContext()
	err := fmt.Errorf("handler: %w", ServiceUnavailableError("agent not configured"))
	if werr := AppErrorResponse(c, err); werr != nil {
		t.Fatalf("write: %v", werr)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d", rec.Code)
	}
	var body struct {
		Data []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Data) != 1 {
		t.Fatalf("body = %s (%v)", rec.Body.String(), err)
	}
	if body.Data[0].Code != "ERR_UNAVAILABLE" {
		t.Fatalf("code = %q", body.Data[0].Code)
	}
}

func TestAppErrorResponseFallsBackTo500(t *testing.T) {
	c, rec := newContext()
	_ = AppErrorResponse(c, errors.New("plain"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := UpstreamError("market data unavailable").WithError(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if err.Status != http.StatusInternalServerError || err.Code != "ERR_UPSTREAM" {
		t.Fatalf("err = %+v", err)
	}
}
