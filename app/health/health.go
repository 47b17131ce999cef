package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	Uptime         string    `json:"uptime"`
	ActiveSessions int       `json:"active_sessions"`
}

// Handler provides health check endpoints
type Handler struct {
	startTime time.Time
	version   string
	ready     atomic.Bool
	sessions  func() int
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// NewHandler creates a new health check handler. sessions reports the number
// of live paginator sessions and may be nil.
func NewHandler(version string, sessions func() int, gatherer prometheus.Gatherer, logger *slog.Logger) *Handler {
	if sessions == nil {
		sessions = func() int { return 0 }
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		startTime: time.Now(),
		version:   version,
		sessions:  sessions,
		gatherer:  gatherer,
		logger:    logger,
	}
}

// SetReady flips the readiness probe. The bot calls it once the gateway
// reports Ready.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Health returns the health status of the application
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now(),
		Version:        h.version,
		Uptime:         time.Since(h.startTime).String(),
		ActiveSessions: h.sessions(),
	}
	writeJSON(w, http.StatusOK, response)
}

// Ready returns 200 once the Discord gateway is connected, 503 before.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Routes returns the mux serving /health, /ready and /metrics.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ready", h.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// StartServer serves the health endpoints until ctx is cancelled.
func (h *Handler) StartServer(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	h.logger.InfoContext(ctx, "Health server listening", slog.String("addr", addr))
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
