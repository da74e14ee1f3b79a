package outstanding

import (
	"sort"
	"time"

	"taskglance/internal/completion"
	"taskglance/internal/datekey"
	"taskglance/internal/model"
)

const dueSoonWindow = 24 * time.Hour

// Compute is the whole engine: filter, scope, classify, sort, truncate, mask.
// It is total — malformed input degrades instead of erroring — and
// deterministic: permuting the input slices cannot change the output.
func Compute(in Input) Summary {
	zone := in.Zone
	if zone == nil {
		zone = time.UTC
	}
	day := in.Day
	if day == "" {
		day = datekey.From(in.Now, zone)
	}

	projects := make(map[model.ProjectID]model.Project, len(in.Projects))
	for _, p := range in.Projects {
		projects[p.ID] = p
	}

	logs := make(map[model.TaskID]map[string]bool, len(in.Logs))
	for _, l := range in.Logs {
		byKey := logs[l.TaskID]
		if byKey == nil {
			byKey = map[string]bool{}
			logs[l.TaskID] = byKey
		}
		byKey[l.OccurrenceKey] = true
	}

	tasks := make(map[model.TaskID]model.Task, len(in.Tasks))
	for _, t := range in.Tasks {
		tasks[t.ID] = t
	}

	completed := func(t model.Task) bool {
		key, err := completion.OccurrenceKeyFor(t, day, zone)
		if err != nil {
			// Rollover task with broken recurrence data: degrade to one-off
			// semantics rather than crash or hide it forever.
			key = model.OccurrenceOnce
		}
		return logs[t.ID][key]
	}

	inActiveProject := func(t model.Task) bool {
		p, ok := projects[t.ProjectID]
		return ok && p.IsActive()
	}

	// A blocker keeps its dependents out only while it is itself still in
	// play: present in the snapshot, in an active project, and not completed
	// for its current occurrence. Unknown blocker ids count as resolved.
	blocked := func(t model.Task) bool {
		for _, id := range t.BlockedBy {
			if id == t.ID {
				// Self-reference is upstream's bug; never deadlock on it.
				continue
			}
			b, ok := tasks[id]
			if !ok {
				continue
			}
			if inActiveProject(b) && !completed(b) {
				return true
			}
		}
		return false
	}

	scoped, policyFallback := scopeTasks(in.Tasks, projects, in.Policy)

	var (
		outstanding []model.Task
		counters    Counters
	)
	for _, t := range scoped {
		if !inActiveProject(t) {
			continue
		}

		if t.EffectiveBehavior() == model.BehaviorHabitReset {
			counters.RecurringTotal++
			if logs[t.ID][day.String()] {
				counters.RecurringDone++
			}
		}

		if completed(t) {
			continue
		}
		if blocked(t) {
			counters.BlockedCount++
			continue
		}
		outstanding = append(outstanding, t)
	}

	counters.OutstandingTotal = len(outstanding)
	for _, t := range outstanding {
		due := effectiveDueAt(t)
		if due != nil && due.Before(in.Now) {
			counters.OverdueCount++
		}
		if isDueSoon(due, in.Now) {
			counters.DueSoonCount++
		}
		if t.Priority == model.PriorityP1 {
			counters.P1Count++
		}
		if t.State == model.StateDoing {
			counters.DoingCount++
		}
	}

	sortOutstanding(outstanding, in.Now)

	// A non-positive cap means "no truncation"; counters are computed over
	// the full set either way.
	shown := outstanding
	if in.TopN > 0 && len(shown) > in.TopN {
		shown = shown[:in.TopN]
	}

	display := make([]DisplayTask, 0, len(shown))
	for i, t := range shown {
		due := effectiveDueAt(t)
		display = append(display, DisplayTask{
			TaskID:       t.ID,
			DisplayTitle: MaskTitle(t.Title, i+1, in.Privacy),
			IsDoing:      t.State == model.StateDoing,
			IsOverdue:    due != nil && due.Before(in.Now),
			Priority:     t.Priority,
			IsP1:         t.Priority == model.PriorityP1,
		})
	}

	summary := Summary{Display: display, Counters: counters}
	if len(display) == 0 {
		switch {
		case policyFallback != FallbackNone:
			summary.FallbackReason = policyFallback
		case len(scoped) == 0:
			summary.FallbackReason = FallbackNoTasks
		default:
			summary.FallbackReason = FallbackAllCompleted
		}
	}
	return summary
}

// scopeTasks applies the selection policy. A pinned project that is missing,
// archived, or completed falls back to the full scope with the matching
// reason; the reason only surfaces if the display list ends up empty.
func scopeTasks(all []model.Task, projects map[model.ProjectID]model.Project, policy SelectionPolicy) ([]model.Task, FallbackReason) {
	if policy.Kind != PolicyPinnedFirst {
		return all, FallbackNone
	}
	if policy.ProjectID == "" {
		return all, FallbackNoPinnedProject
	}
	p, ok := projects[policy.ProjectID]
	if !ok {
		return all, FallbackNoPinnedProject
	}
	switch p.Status {
	case model.ProjectArchived:
		return all, FallbackPinnedProjectArchived
	case model.ProjectCompleted:
		return all, FallbackPinnedProjectCompleted
	}

	scoped := make([]model.Task, 0, len(all))
	for _, t := range all {
		if t.ProjectID == policy.ProjectID {
			scoped = append(scoped, t)
		}
	}
	return scoped, FallbackNone
}

// effectiveDueAt is the instant a task is measured against for overdue and
// due-soon checks. Rollover tasks are due when their current occurrence is,
// not at the original DueAt.
func effectiveDueAt(t model.Task) *time.Time {
	if t.EffectiveBehavior() == model.BehaviorRollover && t.NextOccurrenceDueAt != nil {
		return t.NextOccurrenceDueAt
	}
	return t.DueAt
}

func isDueSoon(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	return due.After(now) && !due.After(now.Add(dueSoonWindow))
}

// classify puts a task into the first group it matches.
func classify(t model.Task, now time.Time) Group {
	due := effectiveDueAt(t)
	switch {
	case t.State == model.StateDoing:
		return GroupDoing
	case due != nil && due.Before(now):
		return GroupOverdue
	case isDueSoon(due, now):
		return GroupDueSoon
	case t.Priority == model.PriorityP1:
		return GroupP1
	case t.EffectiveBehavior() == model.BehaviorHabitReset:
		return GroupHabit
	default:
		return GroupRemainder
	}
}

// sortOutstanding orders by group, then due instant (absent last), then
// priority, then creation instant, then id. The id key makes the order total:
// identical tasks still come out in one reproducible order.
func sortOutstanding(tasks []model.Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		ga, gb := classify(a, now), classify(b, now)
		if ga != gb {
			return ga < gb
		}

		da, db := effectiveDueAt(a), effectiveDueAt(b)
		switch {
		case da != nil && db != nil:
			if !da.Equal(*db) {
				return da.Before(*db)
			}
		case da != nil:
			return true
		case db != nil:
			return false
		}

		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
