package admin

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status     string `json:"status"` // always "ok" while the process serves
	Registered int    `json:"registered_jobs"`
	Running    int    `json:"running_jobs"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names := s.sched.RegisteredJobs()
		running := 0
		for _, name := range names {
			if s.sched.IsRunning(name) {
				running++
			}
		}

		resp := HealthResponse{
			Status:     "ok",
			Registered: len(names),
			Running:    running,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
