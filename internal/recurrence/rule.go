// Package recurrence computes when the next occurrence of a repeating task
// falls. NextOccurrence is a pure function of (rule, instant): there is no
// hidden "today" anywhere, which is what keeps the rollover advance and its
// tests deterministic.
package recurrence

import (
	"errors"
	"slices"
	"time"
)

// Kind is the repetition pattern of a rule.
type Kind string

const (
	Daily   Kind = "daily"
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
)

// ErrEmptyWeekdays is returned by Validate for a weekly rule with no weekdays.
var ErrEmptyWeekdays = errors.New("weekly rule needs at least one weekday")

// TimeOfDay pins occurrences to a wall-clock time. Values are clamped into
// range at construction, never rejected.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Rule describes a daily/weekly/monthly repetition.
type Rule struct {
	Kind     Kind           `json:"kind"`
	Interval int            `json:"interval"`
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
	At       *TimeOfDay     `json:"at,omitempty"`
	Anchor   time.Time      `json:"anchor,omitzero"`
}

// New builds a rule with the interval clamped to at least 1.
func New(kind Kind, interval int) Rule {
	if interval < 1 {
		interval = 1
	}
	return Rule{Kind: kind, Interval: interval}
}

// WithWeekdays sets the weekday set (weekly rules), sorted and deduplicated.
func (r Rule) WithWeekdays(days ...time.Weekday) Rule {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			continue
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	r.Weekdays = out
	return r
}

// WithTime pins the rule to a wall-clock time, clamping out-of-range values.
func (r Rule) WithTime(hour, minute int) Rule {
	r.At = &TimeOfDay{Hour: clamp(hour, 0, 23), Minute: clamp(minute, 0, 59)}
	return r
}

// WithAnchor records the instant the schedule was created from.
func (r Rule) WithAnchor(t time.Time) Rule {
	r.Anchor = t
	return r
}

// Validate rejects the one combination that cannot produce occurrences:
// a weekly rule with an empty weekday set. Everything else is valid once
// the interval is clamped.
func (r Rule) Validate() error {
	switch r.Kind {
	case Daily, Monthly:
		return nil
	case Weekly:
		if len(r.Weekdays) == 0 {
			return ErrEmptyWeekdays
		}
		return nil
	default:
		return errors.New("unknown recurrence kind: " + string(r.Kind))
	}
}

// NextOccurrence returns the first occurrence strictly after the given
// instant. The result keeps after's clock time unless the rule pins one.
func (r Rule) NextOccurrence(after time.Time) time.Time {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch r.Kind {
	case Weekly:
		next = after.AddDate(0, 0, r.weeklyDayOffset(after, interval))
	case Monthly:
		next = after.AddDate(0, interval, 0)
	default:
		next = after.AddDate(0, 0, interval)
	}
	return r.applyTimeOfDay(next)
}

// weeklyDayOffset finds the day delta to the next weekday in the set: the
// first entry strictly after after's weekday within the current week, or the
// first entry of the week interval weeks out.
func (r Rule) weeklyDayOffset(after time.Time, interval int) int {
	days := r.Weekdays
	if len(days) == 0 {
		// Degenerate weekly rule; fall back to the same weekday next interval.
		return 7 * interval
	}
	cur := after.Weekday()
	for _, d := range days {
		if d > cur {
			return int(d - cur)
		}
	}
	return 7*interval - int(cur) + int(days[0])
}

func (r Rule) applyTimeOfDay(t time.Time) time.Time {
	if r.At == nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), r.At.Hour, r.At.Minute, 0, 0, t.Location())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
