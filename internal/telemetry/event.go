package telemetry

import "time"

type EventType string

const (
	EventTaskCompleted       EventType = "task_completed"
	EventCompletionDuplicate EventType = "completion_duplicate"
	EventCompletionRejected  EventType = "completion_rejected"
	EventGlanceComputed      EventType = "glance_computed"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
