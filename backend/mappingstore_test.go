package backend

import (
	"testing"
)

const testProviderID = int64(7)

func TestSaveSyncMappingInsertAndReload(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	m := &SyncMapping{TaskID: 1, ProviderID: testProviderID, RemoteID: "R1", Updated: true}
	if err := store.SaveSyncMapping(m); err != nil {
		t.Fatalf("SaveSyncMapping failed: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("Expected mapping to receive an id")
	}

	mappings, err := store.GetSyncMappings(testProviderID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("Expected one mapping, got %d", len(mappings))
	}
	got := mappings[0]
	if got.TaskID != 1 || got.RemoteID != "R1" || !got.Updated {
		t.Errorf("Unexpected mapping: %+v", got)
	}
}

func TestSaveSyncMappingUpsertsSameTask(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	first := &SyncMapping{TaskID: 1, ProviderID: testProviderID, RemoteID: "R1"}
	if err := store.SaveSyncMapping(first); err != nil {
		t.Fatalf("SaveSyncMapping failed: %v", err)
	}

	// Same (provider, task) with a new remote id replaces the row.
	second := &SyncMapping{TaskID: 1, ProviderID: testProviderID, RemoteID: "R2"}
	if err := store.SaveSyncMapping(second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	mappings, err := store.GetSyncMappings(testProviderID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(mappings) != 1 || mappings[0].RemoteID != "R2" {
		t.Errorf("Expected single mapping pointing at R2, got %+v", mappings)
	}
}

func TestSaveSyncMappingRemoteIDCollision(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	if err := store.SaveSyncMapping(&SyncMapping{TaskID: 1, ProviderID: testProviderID, RemoteID: "R1"}); err != nil {
		t.Fatalf("SaveSyncMapping failed: %v", err)
	}

	// A different task claiming the same remote id violates uniqueness.
	err := store.SaveSyncMapping(&SyncMapping{TaskID: 2, ProviderID: testProviderID, RemoteID: "R1"})
	if err == nil {
		t.Fatal("Expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("Expected IsUniqueViolation to match, got %v", err)
	}
}

func TestMappingProviderIsolation(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	// The same remote id under two providers is two independent mappings.
	if err := store.SaveSyncMapping(&SyncMapping{TaskID: 1, ProviderID: 1, RemoteID: "R1"}); err != nil {
		t.Fatalf("SaveSyncMapping failed: %v", err)
	}
	if err := store.SaveSyncMapping(&SyncMapping{TaskID: 1, ProviderID: 2, RemoteID: "R1"}); err != nil {
		t.Fatalf("SaveSyncMapping for second provider failed: %v", err)
	}

	one, err := store.GetSyncMappings(1)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("Expected one mapping for provider 1, got %d", len(one))
	}
}

func TestClearUpdated(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	for i, remote := range []string{"R1", "R2"} {
		m := &SyncMapping{TaskID: TaskID(i + 1), ProviderID: testProviderID, RemoteID: remote, Updated: true}
		if err := store.SaveSyncMapping(m); err != nil {
			t.Fatalf("SaveSyncMapping failed: %v", err)
		}
	}

	if err := store.ClearUpdated(testProviderID); err != nil {
		t.Fatalf("ClearUpdated failed: %v", err)
	}

	mappings, err := store.GetSyncMappings(testProviderID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	for _, m := range mappings {
		if m.Updated {
			t.Errorf("Expected cleared flag on %+v", m)
		}
	}
}

func TestDeleteSyncMapping(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	m := &SyncMapping{TaskID: 1, ProviderID: testProviderID, RemoteID: "R1"}
	if err := store.SaveSyncMapping(m); err != nil {
		t.Fatalf("SaveSyncMapping failed: %v", err)
	}
	if err := store.DeleteSyncMapping(m); err != nil {
		t.Fatalf("DeleteSyncMapping failed: %v", err)
	}

	mappings, err := store.GetSyncMappings(testProviderID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(mappings) != 0 {
		t.Errorf("Expected no mappings, got %+v", mappings)
	}
}

func TestMarkUpdated(t *testing.T) {
	store := NewMappingStore(createTestDatabase(t))

	m := &SyncMapping{TaskID: 1, ProviderID: testProviderID, RemoteID: "R1"}
	if err := store.SaveSyncMapping(m); err != nil {
		t.Fatalf("SaveSyncMapping failed: %v", err)
	}
	if err := store.MarkUpdated(testProviderID, 1); err != nil {
		t.Fatalf("MarkUpdated failed: %v", err)
	}

	mappings, err := store.GetSyncMappings(testProviderID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(mappings) != 1 || !mappings[0].Updated {
		t.Errorf("Expected dirty mapping, got %+v", mappings)
	}
}
