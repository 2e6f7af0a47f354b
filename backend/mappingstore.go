package backend

import (
	"fmt"
)

// MappingStore persists the correspondence between local task ids and
// per-provider remote ids.
type MappingStore struct {
	db *Database
}

// NewMappingStore creates a mapping store on an initialized database
func NewMappingStore(db *Database) *MappingStore {
	return &MappingStore{db: db}
}

// GetSyncMappings returns every mapping for one provider.
func (s *MappingStore) GetSyncMappings(providerID int64) ([]*SyncMapping, error) {
	rows, err := s.db.Query(`
		SELECT id, provider_id, task_id, remote_id, updated
		FROM sync_mappings WHERE provider_id = ?
		ORDER BY id`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*SyncMapping
	for rows.Next() {
		var (
			m       SyncMapping
			updated int
		)
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.TaskID, &m.RemoteID, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan sync mapping: %w", err)
		}
		m.Updated = updated == 1
		mappings = append(mappings, &m)
	}
	return mappings, rows.Err()
}

// SaveSyncMapping inserts a new mapping or updates the remote id and dirty
// flag of an existing (provider, task) row. A collision on
// (provider, remote_id) with a different task surfaces as ErrUniqueViolation.
func (s *MappingStore) SaveSyncMapping(m *SyncMapping) error {
	updated := 0
	if m.Updated {
		updated = 1
	}

	if m.ID == 0 {
		result, err := s.db.Exec(`
			INSERT INTO sync_mappings (provider_id, task_id, remote_id, updated)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(provider_id, task_id)
			DO UPDATE SET remote_id = excluded.remote_id, updated = excluded.updated
		`, m.ProviderID, m.TaskID, m.RemoteID, updated)
		if err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("%w: provider %d remote %s", ErrUniqueViolation, m.ProviderID, m.RemoteID)
			}
			return fmt.Errorf("failed to save sync mapping: %w", err)
		}
		id, err := result.LastInsertId()
		if err == nil && id > 0 {
			m.ID = id
		}
		return nil
	}

	_, err := s.db.Exec(`
		UPDATE sync_mappings SET remote_id = ?, updated = ? WHERE id = ?
	`, m.RemoteID, updated, m.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: provider %d remote %s", ErrUniqueViolation, m.ProviderID, m.RemoteID)
		}
		return fmt.Errorf("failed to update sync mapping %d: %w", m.ID, err)
	}
	return nil
}

// DeleteSyncMapping removes a mapping.
func (s *MappingStore) DeleteSyncMapping(m *SyncMapping) error {
	var err error
	if m.ID != 0 {
		_, err = s.db.Exec("DELETE FROM sync_mappings WHERE id = ?", m.ID)
	} else {
		_, err = s.db.Exec("DELETE FROM sync_mappings WHERE provider_id = ? AND task_id = ?",
			m.ProviderID, m.TaskID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete sync mapping: %w", err)
	}
	return nil
}

// MarkUpdated sets the dirty flag on the mapping for one task, recording a
// local mutation since the last successful push.
func (s *MappingStore) MarkUpdated(providerID int64, taskID TaskID) error {
	_, err := s.db.Exec("UPDATE sync_mappings SET updated = 1 WHERE provider_id = ? AND task_id = ?",
		providerID, taskID)
	if err != nil {
		return fmt.Errorf("failed to mark mapping updated: %w", err)
	}
	return nil
}

// MarkAllUpdated sets the dirty flag on every existing mapping for the given
// provider; tasks without a mapping are not touched. Used by callers that
// mutate tasks outside a sync run.
func (s *MappingStore) MarkAllUpdated(providerID int64) error {
	_, err := s.db.Exec("UPDATE sync_mappings SET updated = 1 WHERE provider_id = ?", providerID)
	if err != nil {
		return fmt.Errorf("failed to mark mappings updated: %w", err)
	}
	return nil
}

// ClearUpdated clears the dirty flag on every mapping for the provider. Runs
// call this at finalization so only post-run mutations carry the flag into
// the next run.
func (s *MappingStore) ClearUpdated(providerID int64) error {
	_, err := s.db.Exec("UPDATE sync_mappings SET updated = 0 WHERE provider_id = ?", providerID)
	if err != nil {
		return fmt.Errorf("failed to clear updated flags: %w", err)
	}
	return nil
}
