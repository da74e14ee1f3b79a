package outstanding

import (
	"fmt"
	"unicode/utf8"
)

// PrivacyMode controls how much user text reaches the display surface.
type PrivacyMode string

const (
	PrivacyVisible PrivacyMode = "visible"
	PrivacyMasked  PrivacyMode = "masked"
	PrivacyHidden  PrivacyMode = "hidden"
)

// maxVisibleTitleLen keeps visible titles inside a glance-sized surface.
const maxVisibleTitleLen = 60

// MaskTitle renders a task title for display. It runs after ranking and
// touches nothing but the string: masked and hidden output never contain any
// raw user text. position is the task's 1-based slot in the sorted list.
func MaskTitle(title string, position int, mode PrivacyMode) string {
	switch mode {
	case PrivacyMasked:
		return fmt.Sprintf("Task %d", position)
	case PrivacyHidden:
		return ""
	default:
		return truncate(title, maxVisibleTitleLen)
	}
}

// MaskProjectTitle applies the same three-level policy to a project title.
func MaskProjectTitle(title string, mode PrivacyMode) string {
	switch mode {
	case PrivacyMasked:
		return "Project"
	case PrivacyHidden:
		return ""
	default:
		return truncate(title, maxVisibleTitleLen)
	}
}

// CompletionMessage renders the short status line after a completion
// attempt. Only the visible level may echo the task title.
func CompletionMessage(title string, alreadyCompleted bool, mode PrivacyMode) string {
	if mode == PrivacyHidden {
		return ""
	}
	if mode == PrivacyMasked {
		if alreadyCompleted {
			return "Task already completed"
		}
		return "Task completed"
	}
	if alreadyCompleted {
		return fmt.Sprintf("Already completed: %s", truncate(title, maxVisibleTitleLen))
	}
	return fmt.Sprintf("Completed: %s", truncate(title, maxVisibleTitleLen))
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
