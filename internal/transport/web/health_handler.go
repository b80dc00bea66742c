package web

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HealthResponse is the body of /health and /ready / Corps de /health et /ready
type HealthResponse struct {
	Status    string            `json:"status"` // "ok" or "error"
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
}

var startTime = time.Now()

// HealthCheck reports liveness without touching dependencies / Indique la vivacité sans vérifier les dépendances
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    formatUptime(time.Since(startTime)),
	})
}

// ReadinessCheck returns 503 when the database is unreachable / Retourne 503 si la base est injoignable
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": h.checkDatabase(r.Context())}

	status, code := "ok", http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status, code = "error", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

func (h *Handler) checkDatabase(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var one int
	if err := h.container.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return "error"
	}
	return "ok"
}

// formatUptime renders the two most significant units, e.g. "1d 5h" / Affiche les deux unités principales
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
