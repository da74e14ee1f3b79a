package model

import (
	"slices"
	"time"

	"taskglance/internal/recurrence"
)

// TaskID is a unique identifier for a task.
type TaskID string

// Priority ranks a task P1 (highest) through P4 (lowest, default).
type Priority int

const (
	PriorityP1 Priority = 1
	PriorityP2 Priority = 2
	PriorityP3 Priority = 3
	PriorityP4 Priority = 4
)

// WorkflowState is the kanban-style state of a task.
type WorkflowState string

const (
	StateTodo  WorkflowState = "todo"
	StateDoing WorkflowState = "doing"
	StateDone  WorkflowState = "done"
)

// RecurrenceBehavior decides what a completion means for a recurring task.
type RecurrenceBehavior string

const (
	// BehaviorNone: one-off task, a single completable occurrence.
	BehaviorNone RecurrenceBehavior = ""
	// BehaviorHabitReset: each calendar day is a fresh occurrence; missed
	// days do not carry over.
	BehaviorHabitReset RecurrenceBehavior = "habitReset"
	// BehaviorRollover: an incomplete occurrence stays due until completed,
	// then the next one is scheduled from the recurrence rule.
	BehaviorRollover RecurrenceBehavior = "rollover"
)

// Task is a unit of work inside a project.
type Task struct {
	ID        TaskID     `json:"id"`
	ProjectID ProjectID  `json:"projectId"`
	Title     string     `json:"title"`
	DueAt     *time.Time `json:"dueAt,omitempty"`

	Priority Priority      `json:"priority"`
	State    WorkflowState `json:"state"`

	Recurrence          *recurrence.Rule    `json:"recurrence,omitempty"`
	RecurrenceBehavior  *RecurrenceBehavior `json:"recurrenceBehavior,omitempty"`
	NextOccurrenceDueAt *time.Time          `json:"nextOccurrenceDueAt,omitempty"`

	// LegacyRecurring predates RecurrenceBehavior; kept so old data keeps
	// resetting daily. See EffectiveBehavior.
	LegacyRecurring bool `json:"legacyRecurring,omitempty"`

	BlockedBy []TaskID `json:"blockedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTask creates a task with the field defaults applied.
func NewTask(projectID ProjectID, title string) Task {
	now := time.Now()
	return Task{
		ProjectID: projectID,
		Title:     title,
		Priority:  PriorityP4,
		State:     StateTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveBehavior resolves the recurrence behavior a task actually runs
// under. An explicit override wins; otherwise legacy-recurring tasks default
// to habit reset and rule-bearing tasks to rollover. Every component that
// cares about recurrence goes through this, nothing inspects the raw fields.
func (t Task) EffectiveBehavior() RecurrenceBehavior {
	if t.RecurrenceBehavior != nil {
		switch *t.RecurrenceBehavior {
		case BehaviorHabitReset, BehaviorRollover:
			return *t.RecurrenceBehavior
		}
	}
	if t.LegacyRecurring {
		return BehaviorHabitReset
	}
	if t.Recurrence != nil {
		return BehaviorRollover
	}
	return BehaviorNone
}

// IsRecurring reports whether the task resets or rolls over instead of
// completing once.
func (t Task) IsRecurring() bool {
	return t.EffectiveBehavior() != BehaviorNone
}

// IsBlockedBy reports whether id appears in the task's blocker list.
func (t Task) IsBlockedBy(id TaskID) bool {
	return slices.Contains(t.BlockedBy, id)
}

// NormalizeTask fills zero values for fields with non-zero defaults. Stores
// call this on the way in and out so callers never see a priority of 0.
func NormalizeTask(t *Task) {
	if t.Priority < PriorityP1 || t.Priority > PriorityP4 {
		t.Priority = PriorityP4
	}
	if t.State == "" {
		t.State = StateTodo
	}
}
