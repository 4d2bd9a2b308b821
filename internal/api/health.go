package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"prepflow/possync/internal/models/dtos"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]dtos.ServiceStatus)

		pgStatus := "ok"
		pgDetails := "Postgres Connected"
		if err := db.Ping(); err != nil {
			pgStatus = "down"
			pgDetails = err.Error()
		}
		services["postgres"] = dtos.ServiceStatus{
			Status:  pgStatus,
			Details: pgDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := dtos.HealthCheckResponse{
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: services,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
