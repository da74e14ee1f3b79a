// Package datekey gives every instant a calendar-day identity in an explicit
// time zone. The YYYY-MM-DD string is the single authority for "same day"
// comparisons: habit completions and rollover occurrences are keyed by it, so
// a device hopping time zones can never silently reclassify a completion.
package datekey

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Key identifies one local calendar day, formatted YYYY-MM-DD. Lexicographic
// order on the string is date order, so Key is directly comparable.
type Key string

// From maps an instant to the calendar day it falls on in loc. The day flips
// at local midnight; exact midnight belongs to the new day. The same instant
// may map to different keys under different zones — that is the point.
func From(t time.Time, loc *time.Location) Key {
	return Key(t.In(loc).Format(layout))
}

// Today is From(now) for callers that live at the clock edge.
func Today(loc *time.Location) Key {
	return From(time.Now(), loc)
}

// Parse validates a YYYY-MM-DD string and returns it as a Key.
func Parse(s string) (Key, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	// Round-trip guards against accepted-but-noncanonical forms.
	if got := t.Format(layout); got != s {
		return "", fmt.Errorf("invalid date key %q: not canonical (want %s)", s, got)
	}
	return Key(s), nil
}

// NextDay returns the key one calendar day later.
func (k Key) NextDay() Key {
	return k.addDays(1)
}

// PreviousDay returns the key one calendar day earlier.
func (k Key) PreviousDay() Key {
	return k.addDays(-1)
}

func (k Key) addDays(n int) Key {
	t, err := time.Parse(layout, string(k))
	if err != nil {
		return k
	}
	return Key(t.AddDate(0, 0, n).Format(layout))
}

// Before reports whether k is an earlier day than other.
func (k Key) Before(other Key) bool { return k < other }

// After reports whether k is a later day than other.
func (k Key) After(other Key) bool { return k > other }

func (k Key) String() string { return string(k) }
