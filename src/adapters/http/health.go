package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{Status: "ok", Checks: make(map[string]string, len(s.health))}
	status := http.StatusOK

	for _, check := range s.health {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("check", check.Name), zap.Error(err))
			response.Checks[check.Name] = "unavailable"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[check.Name] = "ok"
	}

	writeJSON(w, status, response)
}
