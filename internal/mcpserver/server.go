// Package mcpserver exposes scheduler control over the Model Context
// Protocol so an assistant can inspect and steer jobs through stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/cadence/internal/history"
	"github.com/flemzord/cadence/internal/schedule"
)

// RunSource yields recent run history, per job or across all jobs.
type RunSource interface {
	Recent(ctx context.Context, job string, n int) ([]history.Run, error)
}

// Server bridges a running scheduler to MCP clients.
type Server struct {
	sched *schedule.Scheduler
	runs  RunSource
	mcp   *server.MCPServer
}

// New builds the MCP server around sched. runs may be nil when run
// history is disabled.
func New(sched *schedule.Scheduler, runs RunSource, version string) *Server {
	s := &Server{
		sched: sched,
		runs:  runs,
		mcp: server.NewMCPServer(
			"cadence",
			version,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("cadence_list_jobs",
		mcp.WithDescription("List all registered jobs and whether each is currently running"),
	), s.handleListJobs)

	s.mcp.AddTool(mcp.NewTool("cadence_start_job",
		mcp.WithDescription("Start a registered job's schedule"),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job name as shown by cadence_list_jobs"),
		),
	), s.handleStartJob)

	s.mcp.AddTool(mcp.NewTool("cadence_stop_job",
		mcp.WithDescription("Stop a job's schedule; an in-flight run is not interrupted"),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job name as shown by cadence_list_jobs"),
		),
	), s.handleStopJob)

	s.mcp.AddTool(mcp.NewTool("cadence_run_history",
		mcp.WithDescription("Show recent run outcomes for one job, newest first"),
		mcp.WithString("job",
			mcp.Required(),
			mcp.Description("Job name as shown by cadence_list_jobs"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default: 20)"),
		),
	), s.handleRunHistory)
}

func (s *Server) handleListJobs(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := s.sched.RegisteredJobs()
	if len(names) == 0 {
		return mcp.NewToolResultText("No jobs registered"), nil
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		state := "stopped"
		if s.sched.IsRunning(name) {
			state = "running"
		}
		fmt.Fprintf(&b, "%s\t%s\n", name, state)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleStartJob(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	job, err := request.RequireString("job")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !slices.Contains(s.sched.RegisteredJobs(), job) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown job %q", job)), nil
	}

	s.sched.Start(job)
	return mcp.NewToolResultText(fmt.Sprintf("job %q started", job)), nil
}

func (s *Server) handleStopJob(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	job, err := request.RequireString("job")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !slices.Contains(s.sched.RegisteredJobs(), job) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown job %q", job)), nil
	}

	s.sched.Stop(job)
	return mcp.NewToolResultText(fmt.Sprintf("job %q stopped", job)), nil
}

func (s *Server) handleRunHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.runs == nil {
		return mcp.NewToolResultError("run history is disabled in this instance"), nil
	}

	job, err := request.RequireString("job")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt("limit", 20)
	if limit < 1 {
		limit = 20
	}

	runs, err := s.runs.Recent(ctx, job, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read run history: %v", err)), nil
	}
	if len(runs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No recorded runs for %q", job)), nil
	}

	out, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// Serve blocks serving MCP over stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
