package completion

import (
	"errors"
	"testing"
	"time"

	"taskglance/internal/clock"
	"taskglance/internal/datekey"
	"taskglance/internal/model"
	"taskglance/internal/recurrence"
	"taskglance/internal/store"
)

func newFixture(t *testing.T) (*store.MemoryRepo, *UseCase, *clock.FakeClock) {
	t.Helper()
	repo := store.NewMemoryRepo()
	clk := clock.NewFakeClock(time.Date(2026, 2, 3, 15, 0, 0, 0, time.UTC))
	uc := New(repo, repo, clk, time.UTC)
	return repo, uc, clk
}

func createTask(t *testing.T, repo *store.MemoryRepo, task model.Task) model.Task {
	t.Helper()
	p, err := repo.CreateProject(model.Project{Title: "Inbox", StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	task.ProjectID = p.ID
	created, err := repo.CreateTask(task)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func countLogs(t *testing.T, repo *store.MemoryRepo, taskID model.TaskID) int {
	t.Helper()
	snap, err := repo.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	n := 0
	for _, l := range snap.Logs {
		if l.TaskID == taskID {
			n++
		}
	}
	return n
}

func TestComplete_OneOffIsIdempotent(t *testing.T) {
	repo, uc, _ := newFixture(t)
	task := createTask(t, repo, model.NewTask("", "Buy milk"))

	var already []bool
	for i := 0; i < 3; i++ {
		res, err := uc.Complete(Request{TaskID: task.ID})
		if err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
		already = append(already, res.WasAlreadyCompleted)
		if res.Log.OccurrenceKey != model.OccurrenceOnce {
			t.Fatalf("occurrence key = %q, want once", res.Log.OccurrenceKey)
		}
		if res.UpdatedTask != nil {
			t.Fatalf("one-off completion must not mutate the task")
		}
	}

	want := []bool{false, true, true}
	for i := range want {
		if already[i] != want[i] {
			t.Fatalf("wasAlreadyCompleted = %v, want %v", already, want)
		}
	}
	if n := countLogs(t, repo, task.ID); n != 1 {
		t.Fatalf("log count = %d, want exactly 1", n)
	}
}

func TestComplete_HabitResetKeyedByDay(t *testing.T) {
	repo, uc, clk := newFixture(t)
	habit := model.NewTask("", "Stretch")
	habit.LegacyRecurring = true
	task := createTask(t, repo, habit)

	res, err := uc.Complete(Request{TaskID: task.ID})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Log.OccurrenceKey != "2026-02-03" {
		t.Fatalf("key = %q, want today's day key", res.Log.OccurrenceKey)
	}

	// Same day again: no-op.
	res, err = uc.Complete(Request{TaskID: task.ID})
	if err != nil || !res.WasAlreadyCompleted {
		t.Fatalf("expected idempotent same-day completion, got %+v, %v", res, err)
	}

	// Next day is a fresh occurrence.
	clk.Advance(24 * time.Hour)
	res, err = uc.Complete(Request{TaskID: task.ID})
	if err != nil {
		t.Fatalf("complete next day: %v", err)
	}
	if res.WasAlreadyCompleted || res.Log.OccurrenceKey != "2026-02-04" {
		t.Fatalf("expected fresh occurrence next day, got %+v", res)
	}
	if n := countLogs(t, repo, task.ID); n != 2 {
		t.Fatalf("log count = %d, want 2", n)
	}
}

func TestComplete_HabitResetExplicitDay(t *testing.T) {
	repo, uc, _ := newFixture(t)
	habit := model.NewTask("", "Journal")
	habit.LegacyRecurring = true
	task := createTask(t, repo, habit)

	res, err := uc.Complete(Request{TaskID: task.ID, Day: datekey.Key("2026-01-31")})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Log.OccurrenceKey != "2026-01-31" {
		t.Fatalf("key = %q, want explicit day", res.Log.OccurrenceKey)
	}
}

func TestComplete_RolloverAdvancesFromPreAdvanceDue(t *testing.T) {
	repo, uc, _ := newFixture(t)

	// 2026-02-04 is a Wednesday; the weekly-Wednesday rule advances one week.
	nextDue := time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)
	rule := recurrence.New(recurrence.Weekly, 1).WithWeekdays(time.Wednesday)
	task := model.NewTask("", "Water plants")
	task.Recurrence = &rule
	task.NextOccurrenceDueAt = &nextDue
	created := createTask(t, repo, task)

	res, err := uc.Complete(Request{TaskID: created.ID})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	// The log closes the occurrence being completed, keyed by the
	// pre-advance due instant.
	if res.Log.OccurrenceKey != "2026-02-04" {
		t.Fatalf("key = %q, want pre-advance day", res.Log.OccurrenceKey)
	}
	if res.UpdatedTask == nil || res.UpdatedTask.NextOccurrenceDueAt == nil {
		t.Fatalf("expected updated task with advanced pointer")
	}
	wantNext := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	if !res.UpdatedTask.NextOccurrenceDueAt.Equal(wantNext) {
		t.Fatalf("advanced to %v, want %v", res.UpdatedTask.NextOccurrenceDueAt, wantNext)
	}

	// The store saw the advance too.
	stored, ok, err := repo.GetTask(created.ID)
	if err != nil || !ok {
		t.Fatalf("reload task: %v", err)
	}
	if !stored.NextOccurrenceDueAt.Equal(wantNext) {
		t.Fatalf("persisted pointer = %v, want %v", stored.NextOccurrenceDueAt, wantNext)
	}

	// Completing again now targets the new occurrence.
	res, err = uc.Complete(Request{TaskID: created.ID})
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if res.WasAlreadyCompleted || res.Log.OccurrenceKey != "2026-02-11" {
		t.Fatalf("expected fresh occurrence 2026-02-11, got %+v", res)
	}
}

func TestComplete_RolloverDataIntegrityErrors(t *testing.T) {
	repo, uc, _ := newFixture(t)
	b := model.BehaviorRollover

	noRule := model.NewTask("", "Broken: no rule")
	noRule.RecurrenceBehavior = &b
	created := createTask(t, repo, noRule)
	if _, err := uc.Complete(Request{TaskID: created.ID}); !errors.Is(err, ErrRolloverMissingRule) {
		t.Fatalf("err = %v, want ErrRolloverMissingRule", err)
	}

	rule := recurrence.New(recurrence.Daily, 1)
	noNext := model.NewTask("", "Broken: no next occurrence")
	noNext.RecurrenceBehavior = &b
	noNext.Recurrence = &rule
	created = createTask(t, repo, noNext)
	if _, err := uc.Complete(Request{TaskID: created.ID}); !errors.Is(err, ErrRolloverMissingNext) {
		t.Fatalf("err = %v, want ErrRolloverMissingNext", err)
	}

	// No logs were written on either failure.
	snap, _ := repo.Snapshot()
	if len(snap.Logs) != 0 {
		t.Fatalf("expected no logs after failed completions, got %d", len(snap.Logs))
	}
}

func TestComplete_TaskNotFound(t *testing.T) {
	_, uc, _ := newFixture(t)
	if _, err := uc.Complete(Request{TaskID: "nope"}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestComplete_ExplicitInstantWins(t *testing.T) {
	repo, uc, _ := newFixture(t)
	task := createTask(t, repo, model.NewTask("", "Backdated"))

	at := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	res, err := uc.Complete(Request{TaskID: task.ID, At: at})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !res.Log.CompletedAt.Equal(at) {
		t.Fatalf("completedAt = %v, want explicit instant", res.Log.CompletedAt)
	}
}

func TestOccurrenceKeyFor_ZoneMatters(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	// 2026-02-04 23:30 UTC is already Feb 5 in Tokyo.
	nextDue := time.Date(2026, 2, 4, 23, 30, 0, 0, time.UTC)
	rule := recurrence.New(recurrence.Daily, 1)
	task := model.Task{Recurrence: &rule, NextOccurrenceDueAt: &nextDue}

	utcKey, err := OccurrenceKeyFor(task, "", time.UTC)
	if err != nil {
		t.Fatalf("utc key: %v", err)
	}
	tokyoKey, err := OccurrenceKeyFor(task, "", tokyo)
	if err != nil {
		t.Fatalf("tokyo key: %v", err)
	}
	if utcKey != "2026-02-04" || tokyoKey != "2026-02-05" {
		t.Fatalf("keys = %q / %q, want 2026-02-04 / 2026-02-05", utcKey, tokyoKey)
	}
}
