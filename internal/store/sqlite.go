package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"taskglance/internal/model"
	"taskglance/internal/recurrence"
)

// SQLiteRepo persists through SQLite in WAL mode. WAL plus a generous busy
// timeout lets the HTTP server and the CLI share one database file.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database and initializes the schema.
func OpenSQLite(path string) (*SQLiteRepo, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	r := &SQLiteRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepo) Close() error { return r.db.Close() }

func (r *SQLiteRepo) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		start_date TEXT NOT NULL,
		due_date   TEXT,
		status     TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id                     TEXT PRIMARY KEY,
		project_id             TEXT NOT NULL REFERENCES projects(id),
		title                  TEXT NOT NULL,
		due_at                 TEXT,
		priority               INTEGER NOT NULL,
		state                  TEXT NOT NULL,
		recurrence             TEXT,
		recurrence_behavior    TEXT,
		next_occurrence_due_at TEXT,
		legacy_recurring       INTEGER NOT NULL DEFAULT 0,
		blocked_by             TEXT,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);

	CREATE TABLE IF NOT EXISTS completion_logs (
		id             TEXT PRIMARY KEY,
		task_id        TEXT NOT NULL REFERENCES tasks(id),
		occurrence_key TEXT NOT NULL,
		completed_at   TEXT NOT NULL,
		UNIQUE (task_id, occurrence_key)
	);
	CREATE INDEX IF NOT EXISTS idx_logs_task ON completion_logs(task_id, occurrence_key);
	`
	_, err := r.db.Exec(schema)
	return err
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func decodeTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteRepo) CreateProject(p model.Project) (model.Project, error) {
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

	_, err := r.db.Exec(
		`INSERT INTO projects (id, title, start_date, due_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(p.ID), p.Title, encodeTime(p.StartDate), encodeTimePtr(p.DueDate),
		string(p.Status), encodeTime(p.CreatedAt), encodeTime(p.UpdatedAt),
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepo) GetProject(id model.ProjectID) (model.Project, bool, error) {
	row := r.db.QueryRow(
		`SELECT id, title, start_date, due_date, status, created_at, updated_at
		 FROM projects WHERE id = ?`, string(id))
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return model.Project{}, false, nil
	}
	if err != nil {
		return model.Project{}, false, err
	}
	return p, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (model.Project, error) {
	var (
		p                  model.Project
		id, status         string
		start, created, up string
		due                sql.NullString
	)
	if err := row.Scan(&id, &p.Title, &start, &due, &status, &created, &up); err != nil {
		return model.Project{}, err
	}
	p.ID = model.ProjectID(id)
	p.Status = model.ProjectStatus(status)

	var err error
	if p.StartDate, err = decodeTime(start); err != nil {
		return model.Project{}, fmt.Errorf("project %s start_date: %w", id, err)
	}
	if p.DueDate, err = decodeTimePtr(due); err != nil {
		return model.Project{}, fmt.Errorf("project %s due_date: %w", id, err)
	}
	if p.CreatedAt, err = decodeTime(created); err != nil {
		return model.Project{}, err
	}
	if p.UpdatedAt, err = decodeTime(up); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *SQLiteRepo) CreateTask(t model.Task) (model.Task, error) {
	now := time.Now()
	if t.ID == "" {
		t.ID = newTaskID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	model.NormalizeTask(&t)

	rec, blocked, err := encodeTaskJSON(t)
	if err != nil {
		return model.Task{}, err
	}
	_, err = r.db.Exec(
		`INSERT INTO tasks (id, project_id, title, due_at, priority, state, recurrence,
		                    recurrence_behavior, next_occurrence_due_at, legacy_recurring,
		                    blocked_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.ID), string(t.ProjectID), t.Title, encodeTimePtr(t.DueAt),
		int(t.Priority), string(t.State), rec, behaviorPtr(t.RecurrenceBehavior),
		encodeTimePtr(t.NextOccurrenceDueAt), boolToInt(t.LegacyRecurring),
		blocked, encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepo) UpdateTask(t model.Task) (model.Task, error) {
	t.UpdatedAt = time.Now()
	model.NormalizeTask(&t)

	rec, blocked, err := encodeTaskJSON(t)
	if err != nil {
		return model.Task{}, err
	}
	res, err := r.db.Exec(
		`UPDATE tasks SET project_id = ?, title = ?, due_at = ?, priority = ?, state = ?,
		                  recurrence = ?, recurrence_behavior = ?, next_occurrence_due_at = ?,
		                  legacy_recurring = ?, blocked_by = ?, updated_at = ?
		 WHERE id = ?`,
		string(t.ProjectID), t.Title, encodeTimePtr(t.DueAt), int(t.Priority), string(t.State),
		rec, behaviorPtr(t.RecurrenceBehavior), encodeTimePtr(t.NextOccurrenceDueAt),
		boolToInt(t.LegacyRecurring), blocked, encodeTime(t.UpdatedAt),
		string(t.ID),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Task{}, err
	}
	if n == 0 {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *SQLiteRepo) GetTask(id model.TaskID) (model.Task, bool, error) {
	row := r.db.QueryRow(taskSelect+` WHERE id = ?`, string(id))
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

const taskSelect = `SELECT id, project_id, title, due_at, priority, state, recurrence,
	recurrence_behavior, next_occurrence_due_at, legacy_recurring, blocked_by,
	created_at, updated_at FROM tasks`

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t                     model.Task
		id, projectID, state  string
		due, rec, behavior    sql.NullString
		nextDue, blocked      sql.NullString
		priority, legacy      int
		created, updated      string
	)
	err := row.Scan(&id, &projectID, &t.Title, &due, &priority, &state, &rec,
		&behavior, &nextDue, &legacy, &blocked, &created, &updated)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = model.TaskID(id)
	t.ProjectID = model.ProjectID(projectID)
	t.Priority = model.Priority(priority)
	t.State = model.WorkflowState(state)
	t.LegacyRecurring = legacy != 0

	if t.DueAt, err = decodeTimePtr(due); err != nil {
		return model.Task{}, fmt.Errorf("task %s due_at: %w", id, err)
	}
	if t.NextOccurrenceDueAt, err = decodeTimePtr(nextDue); err != nil {
		return model.Task{}, fmt.Errorf("task %s next_occurrence_due_at: %w", id, err)
	}
	if rec.Valid {
		var rule recurrence.Rule
		if err := json.Unmarshal([]byte(rec.String), &rule); err != nil {
			return model.Task{}, fmt.Errorf("task %s recurrence: %w", id, err)
		}
		t.Recurrence = &rule
	}
	if behavior.Valid {
		b := model.RecurrenceBehavior(behavior.String)
		t.RecurrenceBehavior = &b
	}
	if blocked.Valid {
		if err := json.Unmarshal([]byte(blocked.String), &t.BlockedBy); err != nil {
			return model.Task{}, fmt.Errorf("task %s blocked_by: %w", id, err)
		}
	}
	if t.CreatedAt, err = decodeTime(created); err != nil {
		return model.Task{}, err
	}
	if t.UpdatedAt, err = decodeTime(updated); err != nil {
		return model.Task{}, err
	}
	model.NormalizeTask(&t)
	return t, nil
}

func encodeTaskJSON(t model.Task) (rec any, blocked any, err error) {
	if t.Recurrence != nil {
		b, err := json.Marshal(t.Recurrence)
		if err != nil {
			return nil, nil, fmt.Errorf("encode recurrence: %w", err)
		}
		rec = string(b)
	}
	if len(t.BlockedBy) > 0 {
		b, err := json.Marshal(t.BlockedBy)
		if err != nil {
			return nil, nil, fmt.Errorf("encode blocked_by: %w", err)
		}
		blocked = string(b)
	}
	return rec, blocked, nil
}

func behaviorPtr(b *model.RecurrenceBehavior) any {
	if b == nil {
		return nil
	}
	return string(*b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepo) HasCompletion(taskID model.TaskID, occurrenceKey string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM completion_logs WHERE task_id = ? AND occurrence_key = ?`,
		string(taskID), occurrenceKey,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) InsertCompletion(l model.CompletionLog) (model.CompletionLog, error) {
	if l.ID == "" {
		l.ID = newLogID()
	}
	// The UNIQUE constraint is the backstop for racing writers; a conflicting
	// insert changes no rows and surfaces as ErrDuplicateCompletion.
	res, err := r.db.Exec(
		`INSERT INTO completion_logs (id, task_id, occurrence_key, completed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(task_id, occurrence_key) DO NOTHING`,
		string(l.ID), string(l.TaskID), l.OccurrenceKey, encodeTime(l.CompletedAt),
	)
	if err != nil {
		return model.CompletionLog{}, fmt.Errorf("insert completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.CompletionLog{}, err
	}
	if n == 0 {
		return model.CompletionLog{}, ErrDuplicateCompletion
	}
	return l, nil
}

func (r *SQLiteRepo) DeleteTask(id model.TaskID) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM completion_logs WHERE task_id = ?`, string(id)); err != nil {
		return false, fmt.Errorf("cascade completion logs: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, string(id))
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) Snapshot() (Snapshot, error) {
	var snap Snapshot

	rows, err := r.db.Query(
		`SELECT id, title, start_date, due_date, status, created_at, updated_at
		 FROM projects ORDER BY id`)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Projects = append(snap.Projects, p)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}

	trows, err := r.db.Query(taskSelect + ` ORDER BY id`)
	if err != nil {
		return Snapshot{}, err
	}
	defer trows.Close()
	for trows.Next() {
		t, err := scanTask(trows)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	if err := trows.Err(); err != nil {
		return Snapshot{}, err
	}

	lrows, err := r.db.Query(
		`SELECT id, task_id, occurrence_key, completed_at
		 FROM completion_logs ORDER BY task_id, occurrence_key`)
	if err != nil {
		return Snapshot{}, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var (
			l           model.CompletionLog
			id, taskID  string
			completedAt string
		)
		if err := lrows.Scan(&id, &taskID, &l.OccurrenceKey, &completedAt); err != nil {
			return Snapshot{}, err
		}
		l.ID = model.CompletionLogID(id)
		l.TaskID = model.TaskID(taskID)
		if l.CompletedAt, err = decodeTime(completedAt); err != nil {
			return Snapshot{}, err
		}
		snap.Logs = append(snap.Logs, l)
	}
	if err := lrows.Err(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}
