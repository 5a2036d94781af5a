package admin

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime      int64     `json:"uptime_seconds"`
	Jobs        []jobJSON `json:"jobs"`
	Subscribers int       `json:"event_subscribers"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names := s.sched.RegisteredJobs()
		slices.Sort(names)

		jobs := make([]jobJSON, 0, len(names))
		for _, name := range names {
			jobs = append(jobs, jobJSON{Name: name, Running: s.sched.IsRunning(name)})
		}

		resp := StatusResponse{
			Uptime:      int64(time.Since(s.startedAt).Seconds()),
			Jobs:        jobs,
			Subscribers: s.hub.subscribers(),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
