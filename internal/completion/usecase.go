// Package completion records that one occurrence of a task was done. It is
// the only mutation in the engine: it writes a completion log and, for
// rollover tasks, advances the next-occurrence pointer. Re-completing an
// already-closed occurrence is a successful no-op, never an error, so a
// duplicate write attempt under racing callers degrades to idempotence.
package completion

import (
	"errors"
	"fmt"
	"time"

	"taskglance/internal/clock"
	"taskglance/internal/datekey"
	"taskglance/internal/model"
)

var (
	// ErrTaskNotFound: the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrRolloverMissingRule: a rollover task has no recurrence rule to
	// advance with. Data-integrity failure, distinct so callers can repair.
	ErrRolloverMissingRule = errors.New("rollover task has no recurrence rule")
	// ErrRolloverMissingNext: a rollover task has no next-occurrence instant,
	// so there is no occurrence to close.
	ErrRolloverMissingNext = errors.New("rollover task has no next occurrence due")
)

// TaskStore is the point-lookup/update slice of the repository the use case
// needs.
type TaskStore interface {
	GetTask(id model.TaskID) (model.Task, bool, error)
	UpdateTask(t model.Task) (model.Task, error)
}

// LogStore checks for and inserts completion logs.
type LogStore interface {
	HasCompletion(taskID model.TaskID, occurrenceKey string) (bool, error)
	InsertCompletion(log model.CompletionLog) (model.CompletionLog, error)
}

// Request identifies the completion to record. Day and At are optional;
// absent values default to today / now in the use case's zone and clock.
type Request struct {
	TaskID model.TaskID
	Day    datekey.Key
	At     time.Time
}

// Result is what happened. UpdatedTask is non-nil only when a rollover
// advance was persisted.
type Result struct {
	Log                 model.CompletionLog `json:"log"`
	WasAlreadyCompleted bool                `json:"wasAlreadyCompleted"`
	UpdatedTask         *model.Task         `json:"updatedTask,omitempty"`
}

// UseCase wires the stores, clock, and zone the completion flow needs.
// Callers are expected to serialize completions per task id; the use case
// itself only guarantees idempotence, not locking.
type UseCase struct {
	Tasks TaskStore
	Logs  LogStore
	Clock clock.Clock
	Zone  *time.Location
}

func New(tasks TaskStore, logs LogStore, clk clock.Clock, zone *time.Location) *UseCase {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if zone == nil {
		zone = time.Local
	}
	return &UseCase{Tasks: tasks, Logs: logs, Clock: clk, Zone: zone}
}

// OccurrenceKeyFor derives the key of the occurrence a completion closes.
// One-off tasks share the constant "once" key. Habit-reset tasks are keyed
// by the day the completion is recorded against. Rollover tasks are keyed by
// the day of their current next-occurrence instant, i.e. the occurrence being
// closed, not the day the user happened to press the button.
func OccurrenceKeyFor(t model.Task, day datekey.Key, zone *time.Location) (string, error) {
	switch t.EffectiveBehavior() {
	case model.BehaviorHabitReset:
		return day.String(), nil
	case model.BehaviorRollover:
		if t.Recurrence == nil {
			return "", ErrRolloverMissingRule
		}
		if t.NextOccurrenceDueAt == nil {
			return "", ErrRolloverMissingNext
		}
		return datekey.From(*t.NextOccurrenceDueAt, zone).String(), nil
	default:
		return model.OccurrenceOnce, nil
	}
}

// Complete validates and records one completion.
func (uc *UseCase) Complete(req Request) (Result, error) {
	at := req.At
	if at.IsZero() {
		at = uc.Clock.Now()
	}
	day := req.Day
	if day == "" {
		day = datekey.From(at, uc.Zone)
	}

	task, ok, err := uc.Tasks.GetTask(req.TaskID)
	if err != nil {
		return Result{}, fmt.Errorf("load task %s: %w", req.TaskID, err)
	}
	if !ok {
		return Result{}, ErrTaskNotFound
	}

	key, err := OccurrenceKeyFor(task, day, uc.Zone)
	if err != nil {
		return Result{}, err
	}

	done, err := uc.Logs.HasCompletion(task.ID, key)
	if err != nil {
		return Result{}, fmt.Errorf("check completion %s/%s: %w", task.ID, key, err)
	}
	if done {
		return Result{
			Log: model.CompletionLog{
				TaskID:        task.ID,
				OccurrenceKey: key,
				CompletedAt:   at,
			},
			WasAlreadyCompleted: true,
		}, nil
	}

	log, err := uc.Logs.InsertCompletion(model.CompletionLog{
		TaskID:        task.ID,
		OccurrenceKey: key,
		CompletedAt:   at,
	})
	if err != nil {
		// A racing writer may have closed the occurrence between the check
		// and the insert; re-read before treating it as a failure.
		if done, rerr := uc.Logs.HasCompletion(task.ID, key); rerr == nil && done {
			return Result{
				Log: model.CompletionLog{
					TaskID:        task.ID,
					OccurrenceKey: key,
					CompletedAt:   at,
				},
				WasAlreadyCompleted: true,
			}, nil
		}
		return Result{}, fmt.Errorf("insert completion %s/%s: %w", task.ID, key, err)
	}

	res := Result{Log: log}

	if task.EffectiveBehavior() == model.BehaviorRollover {
		// Advance exactly one step, anchored on the pre-advance due instant.
		// A task completed after missing several occurrences stays overdue
		// until the pointer catches up; missed occurrences are not skipped.
		next := task.Recurrence.NextOccurrence(*task.NextOccurrenceDueAt)
		task.NextOccurrenceDueAt = &next
		updated, err := uc.Tasks.UpdateTask(task)
		if err != nil {
			return Result{}, fmt.Errorf("advance rollover task %s: %w", task.ID, err)
		}
		res.UpdatedTask = &updated
	}

	return res, nil
}
