// Package store persists projects, tasks, and completion logs. The engine
// itself never touches a store; it consumes the read-only Snapshot a store
// hands out, and the completion use case goes through the narrow task/log
// slices of Repo.
package store

import (
	"errors"

	"github.com/google/uuid"

	"taskglance/internal/model"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateCompletion = errors.New("completion already recorded for occurrence")
)

// Snapshot is a consistent read-only copy of everything the outstanding
// computer reasons about.
type Snapshot struct {
	Projects []model.Project       `json:"projects"`
	Tasks    []model.Task          `json:"tasks"`
	Logs     []model.CompletionLog `json:"logs"`
}

// Repo is the full persistence contract. The completion use case depends
// only on the task and log methods; the glance surface only on Snapshot.
type Repo interface {
	CreateProject(p model.Project) (model.Project, error)
	GetProject(id model.ProjectID) (model.Project, bool, error)

	CreateTask(t model.Task) (model.Task, error)
	GetTask(id model.TaskID) (model.Task, bool, error)
	UpdateTask(t model.Task) (model.Task, error)

	HasCompletion(taskID model.TaskID, occurrenceKey string) (bool, error)
	InsertCompletion(l model.CompletionLog) (model.CompletionLog, error)
	// DeleteTask removes a task and cascades to its completion logs.
	DeleteTask(id model.TaskID) (bool, error)

	Snapshot() (Snapshot, error)
	Close() error
}

func newProjectID() model.ProjectID {
	return model.ProjectID("proj_" + uuid.NewString())
}

func newTaskID() model.TaskID {
	return model.TaskID("task_" + uuid.NewString())
}

func newLogID() model.CompletionLogID {
	return model.CompletionLogID("clog_" + uuid.NewString())
}
