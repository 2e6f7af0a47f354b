package sync

import (
	"taskbridge/backend"
)

// TaskStore is the slice of the local task store the engine consumes.
// backend.TaskStore satisfies it.
type TaskStore interface {
	FetchTaskForSync(id backend.TaskID) (*backend.Task, error)
	SearchForTaskForSync(name string) (*backend.Task, error)
	SaveTask(task *backend.Task) error
	DeleteTask(id backend.TaskID) error
	GetActiveTaskIdentifiers() ([]backend.TaskID, error)
	GetAllTaskIdentifiers() ([]backend.TaskID, error)
}

// TagStore is the slice of the tag store the engine consumes.
// backend.TagStore satisfies it.
type TagStore interface {
	GetAllTagsAsMap() (map[backend.TagID]backend.Tag, error)
	GetTaskTags(taskID backend.TaskID) ([]backend.Tag, error)
	CreateTag(name string) (backend.Tag, error)
	AddTag(taskID backend.TaskID, tagID backend.TagID) error
	RemoveTag(taskID backend.TaskID, tagID backend.TagID) error
}

// MappingStore is the slice of the sync mapping store the engine consumes.
// backend.MappingStore satisfies it.
type MappingStore interface {
	GetSyncMappings(providerID int64) ([]*backend.SyncMapping, error)
	SaveSyncMapping(m *backend.SyncMapping) error
	DeleteSyncMapping(m *backend.SyncMapping) error
	ClearUpdated(providerID int64) error
}
