package datekey

import (
	"testing"
	"time"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load zone %s: %v", name, err)
	}
	return loc
}

func TestFrom_MidnightBoundary(t *testing.T) {
	berlin := mustZone(t, "Europe/Berlin")

	lateNight := time.Date(2026, 2, 3, 23, 59, 0, 0, berlin)
	midnight := time.Date(2026, 2, 4, 0, 0, 0, 0, berlin)
	earlyMorning := time.Date(2026, 2, 4, 0, 1, 0, 0, berlin)

	if From(lateNight, berlin) == From(earlyMorning, berlin) {
		t.Fatalf("23:59 and next-day 00:01 must not share a key")
	}
	if got := From(midnight, berlin); got != "2026-02-04" {
		t.Fatalf("exact midnight belongs to the new day, got %s", got)
	}
	if got := From(lateNight, berlin); got != "2026-02-03" {
		t.Fatalf("expected 2026-02-03, got %s", got)
	}
}

func TestFrom_SameInstantDifferentZones(t *testing.T) {
	tokyo := mustZone(t, "Asia/Tokyo")
	la := mustZone(t, "America/Los_Angeles")

	// 02:00 UTC is already Feb 4 in Tokyo but still Feb 3 in LA.
	instant := time.Date(2026, 2, 4, 2, 0, 0, 0, time.UTC)

	if got := From(instant, tokyo); got != "2026-02-04" {
		t.Fatalf("tokyo key = %s, want 2026-02-04", got)
	}
	if got := From(instant, la); got != "2026-02-03" {
		t.Fatalf("la key = %s, want 2026-02-03", got)
	}
}

func TestParse(t *testing.T) {
	k, err := Parse("2026-02-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != "2026-02-03" {
		t.Fatalf("got %s", k)
	}

	for _, bad := range []string{"", "2026-2-3", "03-02-2026", "2026-13-01", "2026-02-30", "not-a-date"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestDayArithmetic(t *testing.T) {
	k := Key("2026-02-28")
	if got := k.NextDay(); got != "2026-03-01" {
		t.Fatalf("next day across month end = %s", got)
	}
	if got := Key("2026-03-01").PreviousDay(); got != "2026-02-28" {
		t.Fatalf("previous day across month start = %s", got)
	}
	// 2024 is a leap year.
	if got := Key("2024-02-28").NextDay(); got != "2024-02-29" {
		t.Fatalf("leap day = %s", got)
	}
	if got := Key("2025-12-31").NextDay(); got != "2026-01-01" {
		t.Fatalf("next day across year end = %s", got)
	}
}

func TestOrdering(t *testing.T) {
	a, b := Key("2026-02-03"), Key("2026-02-04")
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %s < %s", a, b)
	}
	if !b.After(a) {
		t.Fatalf("expected %s > %s", b, a)
	}
	// Lexicographic order across year boundaries is still date order.
	if !Key("2025-12-31").Before(Key("2026-01-01")) {
		t.Fatalf("year boundary ordering broken")
	}
}
