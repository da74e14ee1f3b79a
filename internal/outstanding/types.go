// Package outstanding selects and ranks the tasks still worth showing. It is
// a pure transform: an immutable snapshot plus an explicit reference instant
// in, a display-ready summary out. No clock, no I/O, no mutation, safe to
// call from any number of goroutines at once.
package outstanding

import (
	"time"

	"taskglance/internal/datekey"
	"taskglance/internal/model"
)

// Group is one of the six strictly ordered priority buckets. A task lands in
// the first group it matches.
type Group int

const (
	GroupDoing     Group = 1 // workflow state doing
	GroupOverdue   Group = 2 // due strictly before now
	GroupDueSoon   Group = 3 // due within the next 24h
	GroupP1        Group = 4 // priority P1
	GroupHabit     Group = 5 // habit-reset recurring
	GroupRemainder Group = 6 // everything else
)

// PolicyKind selects the scoping strategy.
type PolicyKind string

const (
	PolicyPinnedFirst   PolicyKind = "pinnedFirst"
	PolicyTodayOverview PolicyKind = "todayOverview"
)

// SelectionPolicy scopes the computation to one project or to everything.
type SelectionPolicy struct {
	Kind      PolicyKind      `json:"kind"`
	ProjectID model.ProjectID `json:"projectId,omitempty"`
}

// PinnedFirst restricts selection to one project, falling back to the full
// scope when the project is missing, archived, or completed.
func PinnedFirst(id model.ProjectID) SelectionPolicy {
	return SelectionPolicy{Kind: PolicyPinnedFirst, ProjectID: id}
}

// TodayOverview selects across all active projects.
func TodayOverview() SelectionPolicy {
	return SelectionPolicy{Kind: PolicyTodayOverview}
}

// FallbackReason explains an empty display list.
type FallbackReason string

const (
	FallbackNone                   FallbackReason = ""
	FallbackNoTasks                FallbackReason = "noTasks"
	FallbackAllCompleted           FallbackReason = "allCompleted"
	FallbackNoPinnedProject        FallbackReason = "noPinnedProject"
	FallbackPinnedProjectArchived  FallbackReason = "pinnedProjectArchived"
	FallbackPinnedProjectCompleted FallbackReason = "pinnedProjectCompleted"
)

// Input is the full snapshot plus reference context for one computation.
type Input struct {
	Now     time.Time
	Day     datekey.Key
	Zone    *time.Location
	Policy  SelectionPolicy
	Privacy PrivacyMode
	// TopN caps the display list; zero or negative means no cap.
	TopN int

	Projects []model.Project
	Tasks    []model.Task
	Logs     []model.CompletionLog
}

// Counters aggregate over the entire outstanding set, not the displayed
// slice, so a widget can show "3 of 17" honestly.
type Counters struct {
	OutstandingTotal int `json:"outstandingTotal"`
	OverdueCount     int `json:"overdueCount"`
	DueSoonCount     int `json:"dueSoonCount"`
	P1Count          int `json:"p1Count"`
	DoingCount       int `json:"doingCount"`
	RecurringTotal   int `json:"recurringTotal"`
	RecurringDone    int `json:"recurringDone"`
	BlockedCount     int `json:"blockedCount"`
}

// DisplayTask is one ranked entry. The ranking flags are copied from the
// source task at selection time and survive privacy masking unchanged.
type DisplayTask struct {
	TaskID       model.TaskID   `json:"taskId"`
	DisplayTitle string         `json:"displayTitle"`
	IsDoing      bool           `json:"isDoing"`
	IsOverdue    bool           `json:"isOverdue"`
	Priority     model.Priority `json:"priority"`
	IsP1         bool           `json:"isP1"`
}

// Summary is the engine's output.
type Summary struct {
	Display        []DisplayTask  `json:"display"`
	Counters       Counters       `json:"counters"`
	FallbackReason FallbackReason `json:"fallbackReason,omitempty"`
}
