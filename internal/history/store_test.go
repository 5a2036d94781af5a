package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/cadence/internal/schedule"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndRecent(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	events := []schedule.Event{
		{Job: "digest", Outcome: schedule.OutcomeSuccess, StartedAt: base, Duration: 120 * time.Millisecond},
		{Job: "digest", Outcome: schedule.OutcomeFailure, StartedAt: base.Add(time.Hour), Err: "boom"},
		{Job: "indexing", Outcome: schedule.OutcomeSkipped, StartedAt: base.Add(2 * time.Hour)},
	}
	for _, ev := range events {
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := s.Recent(ctx, "digest", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}

	// Newest first.
	if runs[0].Outcome != schedule.OutcomeFailure || runs[0].Err != "boom" {
		t.Errorf("newest run = %+v, want the failure", runs[0])
	}
	if runs[1].Outcome != schedule.OutcomeSuccess {
		t.Errorf("oldest run = %+v, want the success", runs[1])
	}
	if runs[1].Duration != 120*time.Millisecond {
		t.Errorf("duration = %v, want 120ms", runs[1].Duration)
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Errorf("started_at = %v, want %v", runs[1].StartedAt, base)
	}
}

func TestStore_RecentLimit(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	for i := range 5 {
		ev := schedule.Event{
			Job:       "busy",
			Outcome:   schedule.OutcomeSuccess,
			StartedAt: time.Date(2026, time.March, 2, 10, i, 0, 0, time.UTC),
		}
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := s.Recent(ctx, "busy", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("runs = %d, want 3", len(runs))
	}

	if runs, _ := s.Recent(ctx, "busy", 0); runs != nil {
		t.Errorf("Recent with n=0 should return nil, got %v", runs)
	}
}

func TestStore_Prune(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	old := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{old, old.Add(time.Hour), fresh} {
		ev := schedule.Event{Job: "digest", Outcome: schedule.OutcomeSuccess, StartedAt: at}
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	pruned, err := s.Prune(ctx, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}

	runs, err := s.Recent(ctx, "digest", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || !runs[0].StartedAt.Equal(fresh) {
		t.Errorf("remaining runs = %+v, want only the fresh one", runs)
	}
}

func TestStore_SubsecondOrdering(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	// All within one second, with fractional parts chosen so that a
	// trimmed decimal rendering would sort "120ms" after "123ms".
	base := time.Date(2026, time.March, 2, 10, 0, 5, 0, time.UTC)
	starts := []time.Time{
		base.Add(123 * time.Millisecond),
		base,
		base.Add(120 * time.Millisecond),
	}
	for _, at := range starts {
		ev := schedule.Event{Job: "digest", Outcome: schedule.OutcomeSuccess, StartedAt: at}
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := s.Recent(ctx, "digest", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	for i, want := range []time.Time{base.Add(123 * time.Millisecond), base.Add(120 * time.Millisecond), base} {
		if !runs[i].StartedAt.Equal(want) {
			t.Errorf("runs[%d].StartedAt = %v, want %v", i, runs[i].StartedAt, want)
		}
	}

	// A cutoff between the sub-second instants removes exactly the older two.
	pruned, err := s.Prune(ctx, base.Add(121*time.Millisecond))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}
	runs, err = s.Recent(ctx, "digest", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || !runs[0].StartedAt.Equal(base.Add(123*time.Millisecond)) {
		t.Errorf("remaining runs = %+v, want only the latest", runs)
	}
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.Record(context.Background(), schedule.Event{
		Job: "digest", Outcome: schedule.OutcomeSuccess, StartedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Idempotent migration on reopen; data survives.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer func() { _ = s2.Close() }()

	runs, err := s2.Recent(context.Background(), "digest", 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("runs after reopen = %d, want 1", len(runs))
	}
}
