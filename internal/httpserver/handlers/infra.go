package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	RowsLoaded *int   `json:"rows_loaded,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rowCount := len(d.Engine.Rows())

		components := map[string]componentStatus{
			"catalog": {
				OK:         rowCount > 0,
				RowsLoaded: &rowCount,
			},
			"redis": checkRedis(d),
			"auth": {
				OK:   true,
				Mode: d.Auth.State().String(),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	// No rows at all means nothing to serve.
	if catalog, exists := components["catalog"]; exists && !catalog.OK {
		return "critical"
	}
	// Redis down means local rows, views and tokens stop persisting.
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}
	return "ok"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "persistence-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "persistence-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "persistence-enabled",
		Error:  "none",
	}
}
