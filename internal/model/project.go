package model

import (
	"fmt"
	"time"
)

// ProjectID is a unique identifier for a project.
type ProjectID string

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

// Project owns tasks. Only active projects contribute tasks to the
// outstanding computation.
type Project struct {
	ID        ProjectID     `json:"id"`
	Title     string        `json:"title"`
	StartDate time.Time     `json:"startDate"`
	DueDate   *time.Time    `json:"dueDate,omitempty"`
	Status    ProjectStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the project's own field invariants.
func (p Project) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("project %s: title is required", p.ID)
	}
	if p.DueDate != nil && p.DueDate.Before(p.StartDate) {
		return fmt.Errorf("project %s: due date %s before start date %s",
			p.ID, p.DueDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	switch p.Status {
	case ProjectActive, ProjectArchived, ProjectCompleted:
	default:
		return fmt.Errorf("project %s: unknown status %q", p.ID, p.Status)
	}
	return nil
}

// IsActive reports whether the project contributes tasks to selection.
func (p Project) IsActive() bool {
	return p.Status == ProjectActive
}
