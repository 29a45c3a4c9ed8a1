package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type handlers struct {
	deps Deps
}

// handleHealthz responds to liveness probes by checking database
// connectivity.
func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DB.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz responds to readiness probes with per-dependency checks.
func (h *handlers) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.deps.DB.PingContext(r.Context()) }},
		{"data_dir", func() error {
			info, err := os.Stat(h.deps.DataDir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", h.deps.DataDir)
			}
			return nil
		}},
		{"data_dir_writable", func() error {
			probe := filepath.Join(h.deps.DataDir, ".readyz")
			if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
				return err
			}
			return os.Remove(probe)
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// handleStatus reports coarse process state for dashboards.
func (h *handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	var quoteCount int
	if err := h.deps.DB.QueryRowContext(r.Context(),
		"SELECT COUNT(*) FROM quotes").Scan(&quoteCount); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := map[string]any{
		"status":         "running",
		"uptime_seconds": int(time.Since(h.deps.Start).Seconds()),
		"quotes":         quoteCount,
		"cached_streams": h.deps.Cache.Len(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
