package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-veccheck/internal/bench"
	"github.com/example/go-veccheck/internal/config"
	"github.com/example/go-veccheck/internal/kernel"
	"github.com/example/go-veccheck/internal/report"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxIterations  int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxIterations:  1_000_000,
		requestTimeout: 10 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxIterations caps the iteration count accepted by POST /run.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	opts options
	log  *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /backends, and
// POST /run.
func NewHandler(optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		opts: opts,
		log:  opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/backends", h.handleBackends)
	mux.HandleFunc("/run", h.handleRun)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type backendInfo struct {
	Name     string   `json:"name"`
	Auto     string   `json:"auto"`
	Features []string `json:"features"`
}

func (h *handler) handleBackends(w http.ResponseWriter, _ *http.Request) {
	auto, err := kernel.Select(kernel.BackendAuto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]backendInfo, 0, len(kernel.Names()))
	for _, name := range kernel.Names() {
		out = append(out, backendInfo{
			Name:     name,
			Auto:     auto.Name(),
			Features: kernel.Features(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type runRequest struct {
	Backend    string `json:"backend"`
	Iterations int    `json:"iterations"`
}

func (h *handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Iterations < 0 {
		writeError(w, http.StatusBadRequest, "iterations must be non-negative")
		return
	}
	if req.Iterations > h.opts.maxIterations {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("iterations exceeds maximum of %d", h.opts.maxIterations))
		return
	}

	backend, err := kernel.Select(req.Backend)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	rep, err := h.runKernel(ctx, backend, req.Iterations)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			h.log.WarnContext(r.Context(), "kernel run timed out",
				slog.String("backend", backend.Name()),
				slog.Int("iterations", req.Iterations),
				slog.Int64("duration_ms", durationMS),
			)
			writeError(w, http.StatusGatewayTimeout, "kernel run timed out")
			return
		}
		h.log.ErrorContext(r.Context(), "kernel run failed",
			slog.String("backend", backend.Name()),
			slog.Int("iterations", req.Iterations),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "kernel run complete",
		slog.String("backend", backend.Name()),
		slog.Int("iterations", req.Iterations),
		slog.Int64("duration_ms", durationMS),
	)

	writeJSON(w, http.StatusOK, rep)
}

// runKernel executes one run in a goroutine so a slow repetition loop still
// honours the request deadline.
func (h *handler) runKernel(ctx context.Context, b kernel.Backend, iterations int) (report.Report, error) {
	done := make(chan report.Report, 1)
	go func() {
		var rep report.Report
		if iterations > 0 {
			elapsed, res := bench.Measure(b, iterations)
			rep = report.FromResult(res).WithTiming(elapsed, iterations)
		} else {
			rep = report.FromResult(kernel.Run(b))
		}
		rep.Backend = b.Name()
		done <- rep
	}()

	select {
	case rep := <-done:
		return rep, nil
	case <-ctx.Done():
		return report.Report{}, ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	shutdownTimeout time.Duration
}

func New(cfg config.Config) *Server {
	return &Server{
		cfg:             cfg,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	h := NewHandler(
		WithMaxIterations(s.cfg.Server.MaxIterations),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
