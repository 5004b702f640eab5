package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name     string
		mqtt     fakeConn
		influxOK bool
		want     string
	}{
		{"all up", true, true, "ok"},
		{"broker down", false, true, "degraded"},
		{"influx down", true, false, "degraded"},
		{"both down", false, false, "down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter(newFakePointWriter(), nullLogger())
			rr := httptest.NewRecorder()
			NewHealthHandler(tc.mqtt, tc.influxOK, w).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			var out map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
				t.Fatal(err)
			}
			if out["status"] != tc.want {
				t.Fatalf("status = %v, want %s", out["status"], tc.want)
			}
		})
	}
}

func TestReadyHandlerTracksWriteErrors(t *testing.T) {
	pw := newFakePointWriter()
	w := NewWriter(pw, nullLogger())
	h := NewReadyHandler(fakeConn(true), true, w, time.Minute)

	serve := func() int {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rr.Code
	}
	if code := serve(); code != http.StatusOK {
		t.Fatalf("ready = %d", code)
	}

	pw.errs <- errors.New("write failed")
	deadline := time.Now().Add(2 * time.Second)
	for w.LastErrorAge() > time.Minute && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if code := serve(); code != http.StatusServiceUnavailable {
		t.Fatalf("after write error = %d", code)
	}

	rr := httptest.NewRecorder()
	NewReadyHandler(fakeConn(false), true, NewWriter(newFakePointWriter(), nullLogger()), 0).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("broker down = %d", rr.Code)
	}
}
