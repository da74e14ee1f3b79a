package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period               string            `json:"period"`
	EventCounts          map[EventType]int `json:"event_counts"`
	TaskCompletions      int               `json:"task_completions"`
	DuplicateCompletions int               `json:"duplicate_completions"`
	RejectedCompletions  int               `json:"rejected_completions"`
	GlanceComputations   int               `json:"glance_computations"`
	CompletionsByProject map[string]int    `json:"completions_by_project"`
	FallbacksByReason    map[string]int    `json:"fallbacks_by_reason"`
}

// CalculateStats computes usage stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:               since.Format("2006-01-02"),
		EventCounts:          make(map[EventType]int),
		CompletionsByProject: make(map[string]int),
		FallbacksByReason:    make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskCompleted:
			stats.TaskCompletions++
			if projectID, ok := metadata["project_id"].(string); ok {
				stats.CompletionsByProject[projectID]++
			}
		case EventCompletionDuplicate:
			stats.DuplicateCompletions++
		case EventCompletionRejected:
			stats.RejectedCompletions++
		case EventGlanceComputed:
			stats.GlanceComputations++
			if reason, ok := metadata["fallback_reason"].(string); ok && reason != "" {
				stats.FallbacksByReason[reason]++
			}
		}
	}

	return stats, nil
}
