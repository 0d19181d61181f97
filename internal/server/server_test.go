package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/go-veccheck/internal/config"
	"github.com/example/go-veccheck/internal/kernel"
	"github.com/example/go-veccheck/internal/report"
)

func newTestHandler(optFns ...Option) http.Handler {
	quiet := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewHandler(append([]Option{WithLogger(quiet)}, optFns...)...)
}

func postRun(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestHandleBackends(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/backends", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var infos []backendInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("backend count = %d, want 2", len(infos))
	}
}

func TestHandleRun_SingleShot(t *testing.T) {
	h := newTestHandler()

	rec := postRun(t, h, `{"backend":"scalar"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var rep report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rep.VLength != kernel.Length {
		t.Errorf("vlength = %d, want %d", rep.VLength, kernel.Length)
	}
	if rep.Count != 5 {
		t.Errorf("reduction_count = %d, want 5", rep.Count)
	}
	if rep.Iterations != 0 {
		t.Errorf("iterations = %d, want 0 for single-shot", rep.Iterations)
	}
	if rep.Backend != "scalar" {
		t.Errorf("backend = %q, want scalar", rep.Backend)
	}
}

func TestHandleRun_RepetitionMatchesSingleShot(t *testing.T) {
	h := newTestHandler()

	single := postRun(t, h, `{"backend":"scalar"}`)
	repeated := postRun(t, h, `{"backend":"scalar","iterations":100}`)
	if single.Code != http.StatusOK || repeated.Code != http.StatusOK {
		t.Fatalf("status single=%d repeated=%d, want 200", single.Code, repeated.Code)
	}

	var singleRep, repeatedRep report.Report
	if err := json.Unmarshal(single.Body.Bytes(), &singleRep); err != nil {
		t.Fatalf("decode single: %v", err)
	}
	if err := json.Unmarshal(repeated.Body.Bytes(), &repeatedRep); err != nil {
		t.Fatalf("decode repeated: %v", err)
	}

	if repeatedRep.Iterations != 100 {
		t.Errorf("iterations = %d, want 100", repeatedRep.Iterations)
	}
	if repeatedRep.TimingMS < 0 {
		t.Errorf("timing_ms = %v, want >= 0", repeatedRep.TimingMS)
	}
	if repeatedRep.Sum != singleRep.Sum || repeatedRep.Sum2 != singleRep.Sum2 {
		t.Errorf("repetition sums differ from single-shot: %+v vs %+v", repeatedRep, singleRep)
	}
	for i := range singleRep.Output {
		if repeatedRep.Output[i] != singleRep.Output[i] {
			t.Fatalf("output[%d] differs: %v vs %v", i, repeatedRep.Output[i], singleRep.Output[i])
		}
	}
}

func TestHandleRun_Errors(t *testing.T) {
	h := newTestHandler(WithMaxIterations(1000))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid backend", `{"backend":"gpu"}`, http.StatusBadRequest},
		{"negative iterations", `{"iterations":-1}`, http.StatusBadRequest},
		{"over max iterations", `{"iterations":1001}`, http.StatusRequestEntityTooLarge},
		{"bad json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRun(t, h, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandleRun_MethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/run", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = "127.0.0.1:0"

	srv := New(cfg).WithShutdownTimeout(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	// Give the listener a moment, then trigger graceful shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
