package outstanding

import (
	"strings"
	"testing"
)

func TestMaskTitle(t *testing.T) {
	if got := MaskTitle("Buy milk", 1, PrivacyVisible); got != "Buy milk" {
		t.Fatalf("visible = %q", got)
	}
	if got := MaskTitle("Buy milk", 3, PrivacyMasked); got != "Task 3" {
		t.Fatalf("masked = %q", got)
	}
	if got := MaskTitle("Buy milk", 1, PrivacyHidden); got != "" {
		t.Fatalf("hidden = %q", got)
	}
}

func TestMaskTitle_TruncatesLongVisibleTitles(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := MaskTitle(long, 1, PrivacyVisible)
	if len([]rune(got)) != maxVisibleTitleLen {
		t.Fatalf("truncated length = %d, want %d", len([]rune(got)), maxVisibleTitleLen)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis marker, got %q", got)
	}
}

func TestMaskTitle_NoUserTextLeaksIntoMaskedLevels(t *testing.T) {
	secret := "call the oncologist"
	for _, mode := range []PrivacyMode{PrivacyMasked, PrivacyHidden} {
		if got := MaskTitle(secret, 1, mode); strings.Contains(got, "oncologist") {
			t.Fatalf("mode %s leaked user text: %q", mode, got)
		}
		if got := MaskProjectTitle(secret, mode); strings.Contains(got, "oncologist") {
			t.Fatalf("project mode %s leaked user text: %q", mode, got)
		}
		for _, already := range []bool{false, true} {
			if got := CompletionMessage(secret, already, mode); strings.Contains(got, "oncologist") {
				t.Fatalf("completion message mode %s leaked user text: %q", mode, got)
			}
		}
	}
}

func TestCompletionMessage(t *testing.T) {
	if got := CompletionMessage("Buy milk", false, PrivacyVisible); got != "Completed: Buy milk" {
		t.Fatalf("visible = %q", got)
	}
	if got := CompletionMessage("Buy milk", true, PrivacyVisible); got != "Already completed: Buy milk" {
		t.Fatalf("visible already = %q", got)
	}
	if got := CompletionMessage("Buy milk", true, PrivacyMasked); got != "Task already completed" {
		t.Fatalf("masked already = %q", got)
	}
	if got := CompletionMessage("Buy milk", false, PrivacyHidden); got != "" {
		t.Fatalf("hidden = %q", got)
	}
}
