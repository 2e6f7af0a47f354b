package backend

import (
	"database/sql"
	"fmt"
	"time"
)

// TaskStore reads and writes local tasks. All timestamps are persisted as
// Unix seconds.
type TaskStore struct {
	db *Database
}

// NewTaskStore creates a task store on an initialized database
func NewTaskStore(db *Database) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `id, name, notes, importance, due_date, reminder_seconds,
	created_at, modified_at, completed_at, deleted_at`

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var (
		task                          Task
		notes                         sql.NullString
		due, created, modified        sql.NullInt64
		completed, deleted, reminders sql.NullInt64
		importance                    sql.NullInt64
	)
	err := row.Scan(&task.ID, &task.Name, &notes, &importance, &due, &reminders,
		&created, &modified, &completed, &deleted)
	if err != nil {
		return nil, err
	}
	task.Notes = notes.String
	task.Importance = int(importance.Int64)
	task.DueDate = NullInt64ToTime(due)
	task.ReminderSeconds = int(reminders.Int64)
	task.Created = NullInt64ToTimeValue(created)
	task.Modified = NullInt64ToTimeValue(modified)
	task.Completed = NullInt64ToTime(completed)
	task.Deleted = NullInt64ToTime(deleted)
	return &task, nil
}

// FetchTaskForSync loads a single task by id. Returns (nil, nil) when the
// task does not exist, so callers can skip without treating it as a store
// failure.
func (s *TaskStore) FetchTaskForSync(id TaskID) (*Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task %d: %w", id, err)
	}
	return task, nil
}

// SearchForTaskForSync finds a live task by exact name, used for name-based
// rescue of unmapped remote tasks. Returns (nil, nil) when nothing matches.
func (s *TaskStore) SearchForTaskForSync(name string) (*Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+` FROM tasks
		WHERE name = ? AND (deleted_at IS NULL OR deleted_at = 0)
		ORDER BY id LIMIT 1`, name)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search task %q: %w", name, err)
	}
	return task, nil
}

// SaveTask inserts or updates a task. A zero ID means insert; the assigned
// id is written back into the task. Created/Modified are stamped when unset.
func (s *TaskStore) SaveTask(task *Task) error {
	now := time.Now()
	if task.Created.IsZero() {
		task.Created = now
	}
	if task.Modified.IsZero() {
		task.Modified = now
	}

	if task.ID == 0 {
		result, err := s.db.Exec(`
			INSERT INTO tasks (name, notes, importance, due_date, reminder_seconds,
				created_at, modified_at, completed_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			task.Name,
			NullString(task.Notes),
			task.Importance,
			TimeToNullInt64(task.DueDate),
			task.ReminderSeconds,
			TimeValueToNullInt64(task.Created),
			TimeValueToNullInt64(task.Modified),
			TimeToNullInt64(task.Completed),
			TimeToNullInt64(task.Deleted),
		)
		if err != nil {
			return fmt.Errorf("failed to insert task %q: %w", task.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted task id: %w", err)
		}
		task.ID = TaskID(id)
		return nil
	}

	_, err := s.db.Exec(`
		UPDATE tasks
		SET name = ?, notes = ?, importance = ?, due_date = ?, reminder_seconds = ?,
		    modified_at = ?, completed_at = ?, deleted_at = ?
		WHERE id = ?
	`,
		task.Name,
		NullString(task.Notes),
		task.Importance,
		TimeToNullInt64(task.DueDate),
		task.ReminderSeconds,
		TimeValueToNullInt64(task.Modified),
		TimeToNullInt64(task.Completed),
		TimeToNullInt64(task.Deleted),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	return nil
}

// DeleteTask soft-deletes a task by stamping deleted_at. The row survives so
// a later run can still resolve the id; purging is a maintenance concern.
func (s *TaskStore) DeleteTask(id TaskID) error {
	_, err := s.db.Exec("UPDATE tasks SET deleted_at = ?, modified_at = ? WHERE id = ?",
		time.Now().Unix(), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}

// GetActiveTaskIdentifiers returns the ids of tasks that are neither
// completed nor deleted.
func (s *TaskStore) GetActiveTaskIdentifiers() ([]TaskID, error) {
	return s.queryIdentifiers(`SELECT id FROM tasks
		WHERE (deleted_at IS NULL OR deleted_at = 0)
		  AND (completed_at IS NULL OR completed_at = 0)
		ORDER BY id`)
}

// GetAllTaskIdentifiers returns the ids of all non-deleted tasks, completed
// ones included.
func (s *TaskStore) GetAllTaskIdentifiers() ([]TaskID, error) {
	return s.queryIdentifiers(`SELECT id FROM tasks
		WHERE deleted_at IS NULL OR deleted_at = 0
		ORDER BY id`)
}

func (s *TaskStore) queryIdentifiers(query string) ([]TaskID, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query task identifiers: %w", err)
	}
	defer rows.Close()

	var ids []TaskID
	for rows.Next() {
		var id TaskID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan task identifier: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PurgeDeleted removes soft-deleted rows older than the cutoff. Mappings for
// purged tasks are reconciled away on the next sync run.
func (s *TaskStore) PurgeDeleted(olderThan time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM tasks WHERE deleted_at IS NOT NULL AND deleted_at > 0 AND deleted_at < ?",
		olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted tasks: %w", err)
	}
	return result.RowsAffected()
}
