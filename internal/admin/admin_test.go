package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/cadence/internal/config"
	"github.com/flemzord/cadence/internal/history"
	"github.com/flemzord/cadence/internal/schedule"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScheduler(t *testing.T, names ...string) *schedule.Scheduler {
	t.Helper()
	s := schedule.New(schedule.Config{Logger: testLogger()})
	for _, name := range names {
		schedule.Register(s, schedule.JobConfig[struct{}, int]{
			Name:     name,
			Interval: schedule.Interval{Value: 1, Unit: schedule.Hours},
			Runner: func(_ context.Context, _ struct{}) (int, error) {
				return 0, nil
			},
		})
	}
	t.Cleanup(s.StopAll)
	return s
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	sched := testScheduler(t, "digest", "curation")
	sched.Start("digest")
	srv := New(config.AdminConfig{}, sched, nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rr := httptest.NewRecorder()
	srv.handleListJobs().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var jobs []jobJSON
	if err := json.NewDecoder(rr.Body).Decode(&jobs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	// Sorted by name.
	if jobs[0].Name != "curation" || jobs[0].Running {
		t.Errorf("jobs[0] = %+v, want stopped curation", jobs[0])
	}
	if jobs[1].Name != "digest" || !jobs[1].Running {
		t.Errorf("jobs[1] = %+v, want running digest", jobs[1])
	}
}

func TestStartStopJob(t *testing.T) {
	t.Parallel()

	sched := testScheduler(t, "digest")
	srv := New(config.AdminConfig{
		Auth: config.AuthConfig{BasicUser: "ops", BasicPass: "pw"},
	}, sched, nil, nil, testLogger())
	router := srv.buildRouter()

	post := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.SetBasicAuth("ops", "pw")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := post("/api/jobs/digest/start")
	if rr.Code != http.StatusOK {
		t.Fatalf("start status = %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !sched.IsRunning("digest") {
		t.Error("digest should be running after POST start")
	}

	rr = post("/api/jobs/digest/stop")
	if rr.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want %d", rr.Code, http.StatusOK)
	}
	if sched.IsRunning("digest") {
		t.Error("digest should be stopped after POST stop")
	}

	rr = post("/api/jobs/ghost/start")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	cfg := config.AuthConfig{BearerToken: "tok", BasicUser: "ops", BasicPass: "pw"}
	var hits atomic.Int32
	handler := authMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		decorate func(*http.Request)
		want     int
	}{
		{name: "no credentials", decorate: func(*http.Request) {}, want: http.StatusUnauthorized},
		{
			name:     "valid bearer",
			decorate: func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			want:     http.StatusOK,
		},
		{
			name:     "wrong bearer",
			decorate: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			want:     http.StatusUnauthorized,
		},
		{
			name:     "valid basic",
			decorate: func(r *http.Request) { r.SetBasicAuth("ops", "pw") },
			want:     http.StatusOK,
		},
		{
			name:     "wrong basic",
			decorate: func(r *http.Request) { r.SetBasicAuth("ops", "nope") },
			want:     http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			tt.decorate(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	sched := testScheduler(t, "digest", "curation")
	sched.Start("digest")
	srv := New(config.AdminConfig{}, sched, nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Registered != 2 || resp.Running != 1 {
		t.Errorf("health = %+v", resp)
	}
}

// stubRuns implements RunSource.
type stubRuns struct {
	runs []history.Run
	err  error
}

func (s *stubRuns) Recent(_ context.Context, _ string, _ int) ([]history.Run, error) {
	return s.runs, s.err
}

func TestJobRuns(t *testing.T) {
	t.Parallel()

	sched := testScheduler(t, "digest")
	source := &stubRuns{runs: []history.Run{
		{ID: 1, Job: "digest", Outcome: schedule.OutcomeSuccess, StartedAt: time.Now()},
	}}
	srv := New(config.AdminConfig{
		Auth: config.AuthConfig{BearerToken: "tok"},
	}, sched, source, nil, testLogger())

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		srv.buildRouter().ServeHTTP(rr, req)
		return rr
	}

	rr := get("/api/jobs/digest/runs")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var runs []history.Run
	if err := json.NewDecoder(rr.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].Job != "digest" {
		t.Errorf("runs = %+v", runs)
	}

	if rr := get("/api/jobs/digest/runs?limit=0"); rr.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	source.err = errors.New("db gone")
	if rr := get("/api/jobs/digest/runs"); rr.Code != http.StatusInternalServerError {
		t.Errorf("error status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestJobRuns_NoHistory(t *testing.T) {
	t.Parallel()

	sched := testScheduler(t, "digest")
	srv := New(config.AdminConfig{}, sched, nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/digest/runs", nil)
	rr := httptest.NewRecorder()
	srv.handleJobRuns().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestControlRoutesRequireAuthConfig(t *testing.T) {
	t.Parallel()

	sched := testScheduler(t, "digest")
	srv := New(config.AdminConfig{}, sched, nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rr := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rr, req)

	// No auth configured: control endpoints are not mounted at all.
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
