package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/newsletter/internal/pkg/httputil"
)

// HealthCheck reports liveness and database reachability.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"status": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			checks["status"] = "degraded"
			checks["database"] = "unreachable"
			httputil.JSON(w, http.StatusServiceUnavailable, checks)
			return
		}
		checks["database"] = "ok"
	}

	httputil.JSON(w, http.StatusOK, checks)
}
