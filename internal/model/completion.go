package model

import "time"

// CompletionLogID is a unique identifier for a completion log row.
type CompletionLogID string

// OccurrenceOnce is the occurrence key shared by every one-off task: a
// non-recurring task has exactly one completable occurrence.
const OccurrenceOnce = "once"

// CompletionLog records that one occurrence of a task was completed.
// (TaskID, OccurrenceKey) is unique; the row is never mutated after creation
// and is only removed when its task is deleted.
type CompletionLog struct {
	ID            CompletionLogID `json:"id"`
	TaskID        TaskID          `json:"taskId"`
	OccurrenceKey string          `json:"occurrenceKey"`
	CompletedAt   time.Time       `json:"completedAt"`
}
