package store

import (
	"testing"
	"time"

	"github.com/EanHD/homework-app/internal/database"
)

func setupAssignmentStore(t *testing.T) (*AssignmentStore, *ClassStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAssignmentStore(db), NewClassStore(db)
}

func intPtr(i int) *int { return &i }

func TestCreateAssignment(t *testing.T) {
	as, cs := setupAssignmentStore(t)

	class, err := cs.Create("Algebra", "📐")
	if err != nil {
		t.Fatalf("create class: %v", err)
	}

	due := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	a, err := as.Create(class.ID, "Worksheet 4", "pages 10-12", due, intPtr(30))
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	if a.ClassName != "Algebra" {
		t.Errorf("class name = %q, want Algebra", a.ClassName)
	}
	if a.RemindAtMinutes == nil || *a.RemindAtMinutes != 30 {
		t.Errorf("remind_at_minutes = %v, want 30", a.RemindAtMinutes)
	}
	if !a.DueAt.Equal(due) {
		t.Errorf("due_at = %v, want %v", a.DueAt, due)
	}
	if a.Completed {
		t.Error("new assignment should not be completed")
	}
}

func TestCreateAssignmentNoReminder(t *testing.T) {
	as, _ := setupAssignmentStore(t)

	a, err := as.Create("", "Reading", "", time.Now().Add(24*time.Hour), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.RemindAtMinutes != nil {
		t.Errorf("remind_at_minutes = %v, want nil", *a.RemindAtMinutes)
	}
	if a.ClassID != "" {
		t.Errorf("class_id = %q, want empty", a.ClassID)
	}
}

func TestListActiveExcludesCompleted(t *testing.T) {
	as, _ := setupAssignmentStore(t)
	due := time.Now().Add(24 * time.Hour)

	open, _ := as.Create("", "Open", "", due, nil)
	done, _ := as.Create("", "Done", "", due, nil)
	if _, err := as.SetCompleted(done.ID, true, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	active, err := as.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("len = %d, want 1", len(active))
	}
	if active[0].ID != open.ID {
		t.Errorf("active id = %q, want %q", active[0].ID, open.ID)
	}
}

func TestSetCompletedStampsAndClears(t *testing.T) {
	as, _ := setupAssignmentStore(t)

	a, _ := as.Create("", "HW", "", time.Now().Add(time.Hour), nil)

	completedAt := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	a, err := as.SetCompleted(a.ID, true, completedAt)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !a.Completed || a.CompletedAt == nil {
		t.Fatal("expected completed with timestamp")
	}
	if !a.CompletedAt.Equal(completedAt) {
		t.Errorf("completed_at = %v, want %v", a.CompletedAt, completedAt)
	}

	a, err = as.SetCompleted(a.ID, false, time.Now())
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if a.Completed || a.CompletedAt != nil {
		t.Error("undo should clear both completed and completed_at")
	}
}

func TestGetMissingAssignment(t *testing.T) {
	as, _ := setupAssignmentStore(t)

	a, err := as.GetByID("nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if a != nil {
		t.Error("expected nil for missing assignment")
	}
}

func TestDeleteClassKeepsAssignment(t *testing.T) {
	as, cs := setupAssignmentStore(t)

	class, _ := cs.Create("History", "")
	a, _ := as.Create(class.ID, "Essay", "", time.Now().Add(time.Hour), nil)

	if err := cs.Delete(class.ID); err != nil {
		t.Fatalf("delete class: %v", err)
	}

	got, err := as.GetByID(a.ID)
	if err != nil {
		t.Fatalf("get after class delete: %v", err)
	}
	if got == nil {
		t.Fatal("assignment should survive class deletion")
	}
	if got.ClassID != "" || got.ClassName != "" {
		t.Errorf("class link should be cleared, got %q/%q", got.ClassID, got.ClassName)
	}
}

func TestReplaceAllRoundTrip(t *testing.T) {
	as, _ := setupAssignmentStore(t)
	due := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	completedAt := time.Date(2026, 3, 20, 11, 30, 0, 0, time.UTC)

	as.Create("", "Replaced away", "", due, nil)

	a1, _ := as.Create("", "Kept open", "", due, intPtr(10))
	a2, _ := as.Create("", "Kept done", "", due, nil)
	a2, _ = as.SetCompleted(a2.ID, true, completedAt)

	exported, err := as.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := as.ReplaceAll(exported); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	got1, _ := as.GetByID(a1.ID)
	if got1 == nil || got1.RemindAtMinutes == nil || *got1.RemindAtMinutes != 10 {
		t.Error("remind_at_minutes must survive the round trip exactly")
	}

	got2, _ := as.GetByID(a2.ID)
	if got2 == nil || !got2.Completed || got2.CompletedAt == nil || !got2.CompletedAt.Equal(completedAt) {
		t.Error("completed/completed_at must survive the round trip exactly")
	}
}
