package backend

import (
	"fmt"
)

// TagStore reads and writes tags and the task/tag relation.
type TagStore struct {
	db *Database
}

// NewTagStore creates a tag store on an initialized database
func NewTagStore(db *Database) *TagStore {
	return &TagStore{db: db}
}

// GetAllTagsAsMap returns every tag keyed by id.
func (s *TagStore) GetAllTagsAsMap() (map[TagID]Tag, error) {
	rows, err := s.db.Query("SELECT id, name FROM tags ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[TagID]Tag)
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags[tag.ID] = tag
	}
	return tags, rows.Err()
}

// GetTaskTags returns the tags attached to one task.
func (s *TagStore) GetTaskTags(taskID TaskID) ([]Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name FROM tags t
		INNER JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = ?
		ORDER BY t.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for task %d: %w", taskID, err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// CreateTag inserts a tag with the given name. Creation may race with another
// writer; on a name collision the existing row is returned instead.
func (s *TagStore) CreateTag(name string) (Tag, error) {
	result, err := s.db.Exec("INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if IsUniqueViolation(err) {
			return s.findTagByName(name)
		}
		return Tag{}, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Tag{}, fmt.Errorf("failed to read inserted tag id: %w", err)
	}
	return Tag{ID: TagID(id), Name: name}, nil
}

func (s *TagStore) findTagByName(name string) (Tag, error) {
	var tag Tag
	err := s.db.QueryRow("SELECT id, name FROM tags WHERE name = ?", name).Scan(&tag.ID, &tag.Name)
	if err != nil {
		return Tag{}, fmt.Errorf("failed to find tag %q: %w", name, err)
	}
	return tag, nil
}

// AddTag attaches a tag to a task. Already-attached is not an error.
func (s *TagStore) AddTag(taskID TaskID, tagID TagID) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)", taskID, tagID)
	if err != nil {
		return fmt.Errorf("failed to add tag %d to task %d: %w", tagID, taskID, err)
	}
	return nil
}

// RemoveTag detaches a tag from a task.
func (s *TagStore) RemoveTag(taskID TaskID, tagID TagID) error {
	_, err := s.db.Exec("DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
	if err != nil {
		return fmt.Errorf("failed to remove tag %d from task %d: %w", tagID, taskID, err)
	}
	return nil
}
