package admin

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/cadence/internal/history"
)

// jobJSON is one registry entry in the GET /api/jobs response.
type jobJSON struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// handleListJobs returns an http.HandlerFunc for GET /api/jobs.
func (s *Server) handleListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names := s.sched.RegisteredJobs()
		slices.Sort(names)

		jobs := make([]jobJSON, 0, len(names))
		for _, name := range names {
			jobs = append(jobs, jobJSON{Name: name, Running: s.sched.IsRunning(name)})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jobs)
	}
}

// handleStartJob returns an http.HandlerFunc for POST /api/jobs/{name}/start.
// Starting an unknown name is a 404; starting a running job is idempotent.
func (s *Server) handleStartJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if !slices.Contains(s.sched.RegisteredJobs(), name) {
			http.Error(w, "unknown job", http.StatusNotFound)
			return
		}

		s.sched.Start(name)
		s.writeJobState(w, name)
	}
}

// handleStopJob returns an http.HandlerFunc for POST /api/jobs/{name}/stop.
func (s *Server) handleStopJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if !slices.Contains(s.sched.RegisteredJobs(), name) {
			http.Error(w, "unknown job", http.StatusNotFound)
			return
		}

		s.sched.Stop(name)
		s.writeJobState(w, name)
	}
}

// handleStartAll returns an http.HandlerFunc for POST /api/jobs/start-all.
func (s *Server) handleStartAll() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.sched.StartAll()
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleStopAll returns an http.HandlerFunc for POST /api/jobs/stop-all.
func (s *Server) handleStopAll() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.sched.StopAll()
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleJobRuns returns an http.HandlerFunc for GET /api/jobs/{name}/runs.
// Returns 503 when no history store is configured.
func (s *Server) handleJobRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.runs == nil {
			http.Error(w, "run history not configured", http.StatusServiceUnavailable)
			return
		}

		name := chi.URLParam(r, "name")
		limit := 20
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 || n > 500 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		runs, err := s.runs.Recent(r.Context(), name, limit)
		if err != nil {
			s.logger.Error("admin: run history query failed", "job", name, "error", err)
			http.Error(w, "history query failed", http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []history.Run{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(runs)
	}
}

func (s *Server) writeJobState(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jobJSON{Name: name, Running: s.sched.IsRunning(name)})
}
