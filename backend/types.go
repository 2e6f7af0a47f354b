package backend

import (
	"fmt"
	"strings"
	"time"
)

// TaskID is the local primary key of a task. It is stable for the lifetime
// of the task and never reused within a database.
type TaskID int64

// TagID is the local primary key of a tag.
type TagID int64

// Task is the local representation of a task. Name is never empty; it doubles
// as the fallback join key when matching unmapped tasks against remote ones.
type Task struct {
	ID              TaskID
	Name            string
	Notes           string
	Importance      int // 0 = undefined, 1 = highest, 9 = lowest
	DueDate         *time.Time
	ReminderSeconds int
	Created         time.Time
	Modified        time.Time
	Completed       *time.Time
	Deleted         *time.Time
}

// IsCompleted reports whether the task has a completion timestamp.
func (t *Task) IsCompleted() bool {
	return t.Completed != nil && !t.Completed.IsZero()
}

// IsDeleted reports whether the task has been soft-deleted locally.
func (t *Task) IsDeleted() bool {
	return t.Deleted != nil && !t.Deleted.IsZero()
}

// IsActive reports whether the task is neither completed nor deleted.
func (t *Task) IsActive() bool {
	return !t.IsCompleted() && !t.IsDeleted()
}

func (t Task) String() string {
	return fmt.Sprintf("#%d %q", t.ID, t.Name)
}

// Tag is a named label attached to tasks. Tag names compare
// case-insensitively for sync purposes.
type Tag struct {
	ID   TagID
	Name string
}

// NormalizeTagName is the canonical form used for tag comparison.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SyncMapping is the persisted correspondence between a local task and its
// remote counterpart at one provider. (ProviderID, TaskID) and
// (ProviderID, RemoteID) are each unique in the store. Updated is set when
// the local task mutates after the last successful push and cleared at the
// end of a run.
type SyncMapping struct {
	ID         int64
	TaskID     TaskID
	ProviderID int64
	RemoteID   string
	Updated    bool
}

func (m SyncMapping) String() string {
	return fmt.Sprintf("mapping(task=%d provider=%d remote=%s)", m.TaskID, m.ProviderID, m.RemoteID)
}

// TaskProxy is the wire-neutral shape exchanged between the engine and a
// remote connector. Tags travel as plain names; identity travels as the
// provider's remote id. Proxies are built per run and discarded.
type TaskProxy struct {
	ProviderID int64
	RemoteID   string
	Name       string
	Notes      string
	Importance int
	DueDate    *time.Time
	Completed  *time.Time
	Modified   *time.Time
	Tags       []string
	IsDeleted  bool
}

// NewTaskProxy builds a proxy from the current local state of a task.
func NewTaskProxy(providerID int64, remoteID string, task *Task, tags []Tag) *TaskProxy {
	p := &TaskProxy{
		ProviderID: providerID,
		RemoteID:   remoteID,
		Name:       task.Name,
		Notes:      task.Notes,
		Importance: task.Importance,
		DueDate:    copyTime(task.DueDate),
		Completed:  copyTime(task.Completed),
		IsDeleted:  task.IsDeleted(),
	}
	if !task.Modified.IsZero() {
		mod := task.Modified
		p.Modified = &mod
	}
	for _, tag := range tags {
		p.Tags = append(p.Tags, tag.Name)
	}
	return p
}

// WriteToTask copies the proxy's domain fields into a local task. Identity
// fields and the deletion flag are the caller's business.
func (p *TaskProxy) WriteToTask(task *Task) {
	task.Name = p.Name
	task.Notes = p.Notes
	task.Importance = p.Importance
	task.DueDate = copyTime(p.DueDate)
	task.Completed = copyTime(p.Completed)
	if p.Modified != nil {
		task.Modified = *p.Modified
	}
}

// IsCompleted reports whether the remote record carries a completion time.
func (p *TaskProxy) IsCompleted() bool {
	return p.Completed != nil && !p.Completed.IsZero()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
