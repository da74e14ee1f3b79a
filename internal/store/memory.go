package store

import (
	"sort"
	"sync"
	"time"

	"taskglance/internal/model"
)

// MemoryRepo is the in-process implementation: mutex-guarded maps. It backs
// tests and the demo seed; production runs on the SQLite repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	projects map[model.ProjectID]model.Project
	tasks    map[model.TaskID]model.Task
	logs     map[model.TaskID]map[string]model.CompletionLog
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects: map[model.ProjectID]model.Project{},
		tasks:    map[model.TaskID]model.Task{},
		logs:     map[model.TaskID]map[string]model.CompletionLog{},
	}
}

func (r *MemoryRepo) CreateProject(p model.Project) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if p.ID == "" {
		p.ID = newProjectID()
	}
	if p.Status == "" {
		p.Status = model.ProjectActive
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	r.projects[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) GetProject(id model.ProjectID) (model.Project, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	return p, ok, nil
}

func (r *MemoryRepo) CreateTask(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if t.ID == "" {
		t.ID = newTaskID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	model.NormalizeTask(&t)

	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) GetTask(id model.TaskID) (model.Task, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if ok {
		model.NormalizeTask(&t)
	}
	return t, ok, nil
}

func (r *MemoryRepo) UpdateTask(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; !ok {
		return model.Task{}, ErrNotFound
	}
	t.UpdatedAt = time.Now()
	model.NormalizeTask(&t)
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) HasCompletion(taskID model.TaskID, occurrenceKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.logs[taskID][occurrenceKey]
	return ok, nil
}

func (r *MemoryRepo) InsertCompletion(l model.CompletionLog) (model.CompletionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byKey, ok := r.logs[l.TaskID]
	if !ok {
		byKey = map[string]model.CompletionLog{}
		r.logs[l.TaskID] = byKey
	}
	if _, exists := byKey[l.OccurrenceKey]; exists {
		return model.CompletionLog{}, ErrDuplicateCompletion
	}
	if l.ID == "" {
		l.ID = newLogID()
	}
	byKey[l.OccurrenceKey] = l
	return l, nil
}

func (r *MemoryRepo) DeleteTask(id model.TaskID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	delete(r.logs, id)
	return true, nil
}

// Snapshot copies everything out, sorted by id so two snapshots of the same
// state compare equal.
func (r *MemoryRepo) Snapshot() (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Projects: make([]model.Project, 0, len(r.projects)),
		Tasks:    make([]model.Task, 0, len(r.tasks)),
		Logs:     make([]model.CompletionLog, 0, len(r.logs)),
	}
	for _, p := range r.projects {
		snap.Projects = append(snap.Projects, p)
	}
	for _, t := range r.tasks {
		model.NormalizeTask(&t)
		snap.Tasks = append(snap.Tasks, t)
	}
	for _, byKey := range r.logs {
		for _, l := range byKey {
			snap.Logs = append(snap.Logs, l)
		}
	}

	sort.Slice(snap.Projects, func(i, j int) bool { return snap.Projects[i].ID < snap.Projects[j].ID })
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].ID < snap.Tasks[j].ID })
	sort.Slice(snap.Logs, func(i, j int) bool {
		if snap.Logs[i].TaskID != snap.Logs[j].TaskID {
			return snap.Logs[i].TaskID < snap.Logs[j].TaskID
		}
		return snap.Logs[i].OccurrenceKey < snap.Logs[j].OccurrenceKey
	})
	return snap, nil
}

func (r *MemoryRepo) Close() error { return nil }
