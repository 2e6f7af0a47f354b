package backend

import (
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a store on a throwaway database
func createTestDatabase(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveTaskAssignsID(t *testing.T) {
	store := NewTaskStore(createTestDatabase(t))

	task := &Task{Name: "Buy milk"}
	if err := store.SaveTask(task); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("Expected inserted task to receive an id")
	}
	if task.Created.IsZero() || task.Modified.IsZero() {
		t.Error("Expected timestamps to be stamped on insert")
	}
}

func TestFetchTaskForSyncRoundTrip(t *testing.T) {
	store := NewTaskStore(createTestDatabase(t))

	due := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	task := &Task{
		Name:            "Write report",
		Notes:           "quarterly numbers",
		Importance:      3,
		DueDate:         &due,
		ReminderSeconds: 3600,
	}
	if err := store.SaveTask(task); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}

	got, err := store.FetchTaskForSync(task.ID)
	if err != nil {
		t.Fatalf("FetchTaskForSync failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected task to be found")
	}
	if got.Name != task.Name || got.Notes != task.Notes || got.Importance != task.Importance {
		t.Errorf("Round-trip mismatch: got %+v", got)
	}
	if got.DueDate == nil || got.DueDate.Unix() != due.Unix() {
		t.Errorf("Expected due date %v, got %v", due, got.DueDate)
	}
	if got.ReminderSeconds != 3600 {
		t.Errorf("Expected reminder 3600, got %d", got.ReminderSeconds)
	}
}

func TestFetchTaskForSyncMissing(t *testing.T) {
	store := NewTaskStore(createTestDatabase(t))

	got, err := store.FetchTaskForSync(12345)
	if err != nil {
		t.Fatalf("FetchTaskForSync failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing task, got %+v", got)
	}
}

func TestSearchForTaskForSyncSkipsDeleted(t *testing.T) {
	store := NewTaskStore(createTestDatabase(t))

	task := &Task{Name: "Gym"}
	if err := store.SaveTask(task); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}

	found, err := store.SearchForTaskForSync("Gym")
	if err != nil {
		t.Fatalf("SearchForTaskForSync failed: %v", err)
	}
	if found == nil || found.ID != task.ID {
		t.Fatalf("Expected to find task %d, got %+v", task.ID, found)
	}

	if err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	found, err = store.SearchForTaskForSync("Gym")
	if err != nil {
		t.Fatalf("SearchForTaskForSync failed: %v", err)
	}
	if found != nil {
		t.Errorf("Expected deleted task to be unsearchable, got %+v", found)
	}
}

func TestIdentifierSets(t *testing.T) {
	store := NewTaskStore(createTestDatabase(t))

	open := &Task{Name: "Open"}
	done := &Task{Name: "Done"}
	gone := &Task{Name: "Gone"}
	for _, task := range []*Task{open, done, gone} {
		if err := store.SaveTask(task); err != nil {
			t.Fatalf("SaveTask failed: %v", err)
		}
	}

	now := time.Now()
	done.Completed = &now
	if err := store.SaveTask(done); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}
	if err := store.DeleteTask(gone.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	active, err := store.GetActiveTaskIdentifiers()
	if err != nil {
		t.Fatalf("GetActiveTaskIdentifiers failed: %v", err)
	}
	if len(active) != 1 || active[0] != open.ID {
		t.Errorf("Expected active = [%d], got %v", open.ID, active)
	}

	all, err := store.GetAllTaskIdentifiers()
	if err != nil {
		t.Fatalf("GetAllTaskIdentifiers failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected all to hold open and completed tasks, got %v", all)
	}
	for _, id := range all {
		if id == gone.ID {
			t.Error("Deleted task must not appear in all identifiers")
		}
	}
}

func TestPurgeDeleted(t *testing.T) {
	store := NewTaskStore(createTestDatabase(t))

	task := &Task{Name: "Old"}
	if err := store.SaveTask(task); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}
	if err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	purged, err := store.PurgeDeleted(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PurgeDeleted failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("Expected 1 purged row, got %d", purged)
	}

	got, err := store.FetchTaskForSync(task.ID)
	if err != nil {
		t.Fatalf("FetchTaskForSync failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected purged task to be gone, got %+v", got)
	}
}
