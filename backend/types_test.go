package backend

import (
	"testing"
	"time"
)

func TestTaskProxyRoundTrip(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	task := &Task{
		ID:         42,
		Name:       "Taxes",
		Notes:      "filed",
		Importance: 1,
		DueDate:    &due,
		Modified:   time.Now(),
	}

	proxy := NewTaskProxy(3, "R3", task, []Tag{{ID: 1, Name: "Finance"}})
	if proxy.ProviderID != 3 || proxy.RemoteID != "R3" {
		t.Errorf("Unexpected identity: %+v", proxy)
	}
	if proxy.Name != "Taxes" || proxy.Notes != "filed" || proxy.Importance != 1 {
		t.Errorf("Unexpected fields: %+v", proxy)
	}
	if len(proxy.Tags) != 1 || proxy.Tags[0] != "Finance" {
		t.Errorf("Expected tags as strings, got %v", proxy.Tags)
	}
	if proxy.Modified == nil {
		t.Error("Expected modified timestamp to carry over")
	}

	var target Task
	proxy.WriteToTask(&target)
	if target.Name != "Taxes" || target.Notes != "filed" || target.Importance != 1 {
		t.Errorf("WriteToTask mismatch: %+v", target)
	}
	if target.DueDate == nil || target.DueDate.Unix() != due.Unix() {
		t.Errorf("Expected due date to carry over, got %v", target.DueDate)
	}
}

func TestTaskProxyDetachedFromTask(t *testing.T) {
	due := time.Now()
	task := &Task{Name: "Gym", DueDate: &due}

	proxy := NewTaskProxy(1, "R1", task, nil)
	*proxy.DueDate = due.Add(time.Hour)
	if !task.DueDate.Equal(due) {
		t.Error("Mutating the proxy must not touch the task")
	}
}

func TestTaskStateHelpers(t *testing.T) {
	task := &Task{Name: "X"}
	if !task.IsActive() || task.IsDeleted() || task.IsCompleted() {
		t.Error("Fresh task must be active")
	}

	now := time.Now()
	task.Completed = &now
	if task.IsActive() || !task.IsCompleted() {
		t.Error("Completed task must not be active")
	}

	task.Completed = nil
	task.Deleted = &now
	if task.IsActive() || !task.IsDeleted() {
		t.Error("Deleted task must not be active")
	}
}

func TestNormalizeTagName(t *testing.T) {
	if NormalizeTagName("  Home ") != "home" {
		t.Errorf("Unexpected normalization: %q", NormalizeTagName("  Home "))
	}
}
