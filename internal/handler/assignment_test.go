package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EanHD/homework-app/internal/database"
	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/store"
)

func setupAssignmentHandler(t *testing.T) (*AssignmentHandler, *store.ClassStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	as := store.NewAssignmentStore(db)
	cs := store.NewClassStore(db)
	return NewAssignmentHandler(as, cs, nil, nil, nil, slog.Default()), cs
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any, pathID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreateAssignment(t *testing.T) {
	h, cs := setupAssignmentHandler(t)

	class, err := cs.Create("Math", "📐")
	if err != nil {
		t.Fatalf("create class: %v", err)
	}

	due := time.Now().Add(48 * time.Hour).UTC()
	rec := doJSON(t, h.Create, http.MethodPost, "/api/assignments", map[string]any{
		"class_id":          class.ID,
		"title":             "Problem set",
		"due_at":            due.Format(time.RFC3339),
		"remind_at_minutes": 30,
	}, "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var a model.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.ClassName != "Math" {
		t.Errorf("expected class join, got %q", a.ClassName)
	}
	if a.RemindAtMinutes == nil || *a.RemindAtMinutes != 30 {
		t.Errorf("expected reminder offset 30, got %v", a.RemindAtMinutes)
	}
}

func TestCreateAssignmentValidation(t *testing.T) {
	h, _ := setupAssignmentHandler(t)

	cases := []map[string]any{
		{"due_at": "2026-09-03T10:00:00Z"},
		{"title": "x"},
		{"title": "x", "due_at": "2026-09-03T10:00:00Z", "remind_at_minutes": -5},
		{"title": "x", "due_at": "2026-09-03T10:00:00Z", "class_id": "missing"},
	}
	for i, body := range cases {
		rec := doJSON(t, h.Create, http.MethodPost, "/api/assignments", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestCreateAssignmentZeroOffset(t *testing.T) {
	// Zero is a real offset: remind exactly at the due time. Only negative
	// values are invalid.
	h, _ := setupAssignmentHandler(t)

	due := time.Now().Add(24 * time.Hour).UTC()
	rec := doJSON(t, h.Create, http.MethodPost, "/api/assignments", map[string]any{
		"title":             "Lab report",
		"due_at":            due.Format(time.RFC3339),
		"remind_at_minutes": 0,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for zero offset, got %d: %s", rec.Code, rec.Body.String())
	}

	var a model.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.RemindAtMinutes == nil || *a.RemindAtMinutes != 0 {
		t.Errorf("expected stored offset 0, got %v", a.RemindAtMinutes)
	}
}

func TestUpdateMissingAssignment(t *testing.T) {
	h, _ := setupAssignmentHandler(t)

	rec := doJSON(t, h.Update, http.MethodPut, "/api/assignments/nope", map[string]any{
		"title": "x", "due_at": "2026-09-03T10:00:00Z",
	}, "nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSetCompletedStamps(t *testing.T) {
	h, _ := setupAssignmentHandler(t)

	due := time.Now().Add(24 * time.Hour).UTC()
	rec := doJSON(t, h.Create, http.MethodPost, "/api/assignments", map[string]any{
		"title": "Essay", "due_at": due.Format(time.RFC3339),
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	var a model.Assignment
	json.Unmarshal(rec.Body.Bytes(), &a)

	rec = doJSON(t, h.SetCompleted, http.MethodPost, "/api/assignments/"+a.ID+"/complete", map[string]any{
		"completed": true,
	}, a.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: %d: %s", rec.Code, rec.Body.String())
	}

	var done model.Assignment
	json.Unmarshal(rec.Body.Bytes(), &done)
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", done)
	}
}

func TestDeleteAssignment(t *testing.T) {
	h, _ := setupAssignmentHandler(t)

	due := time.Now().Add(24 * time.Hour).UTC()
	rec := doJSON(t, h.Create, http.MethodPost, "/api/assignments", map[string]any{
		"title": "Quiz prep", "due_at": due.Format(time.RFC3339),
	}, "")
	var a model.Assignment
	json.Unmarshal(rec.Body.Bytes(), &a)

	rec = doJSON(t, h.Delete, http.MethodDelete, "/api/assignments/"+a.ID, nil, a.ID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, h.Get, http.MethodGet, "/api/assignments/"+a.ID, nil, a.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
