package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"stockpulse/internal/handler/http/respond"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports storage and feed source health.
//
// A nil DB means the watchlist lives in memory, which is always healthy.
// Source failures only degrade the report: the API still answers from cache.
type HealthHandler struct {
	DB             *sql.DB
	Version        string
	SourceFailures func() map[string]int64
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"storage": h.checkStorage(ctx)}
	if h.SourceFailures != nil {
		checks["sources"] = checkSources(h.SourceFailures())
	}

	status, code := statusHealthy, http.StatusOK
	for _, c := range checks {
		if c.Status == statusUnhealthy {
			status, code = statusUnhealthy, http.StatusServiceUnavailable
			break
		}
		if c.Status == statusDegraded {
			status = statusDegraded
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkStorage(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusHealthy, Message: "in-memory watchlist"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}
	stats := h.DB.Stats()
	return CheckStatus{
		Status: statusHealthy,
		Details: map[string]any{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"wait_count":       stats.WaitCount,
		},
	}
}

func checkSources(failures map[string]int64) CheckStatus {
	if len(failures) == 0 {
		return CheckStatus{Status: statusHealthy}
	}
	details := make(map[string]any, len(failures))
	for name, n := range failures {
		details[name] = n
	}
	return CheckStatus{Status: statusDegraded, Message: "some sources have failed since start", Details: details}
}

// ReadyHandler answers 200 once storage is reachable.
func (h *HealthHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if c := h.checkStorage(ctx); c.Status == statusUnhealthy {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// LiveHandler answers 200 while the process is running.
func LiveHandler(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
