package reminder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/EanHD/homework-app/internal/model"
)

type capturedRequest struct {
	scheduleRequest
	auth string
}

func gatewayServer(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var got []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode gateway request: %v", err)
		}
		mu.Lock()
		got = append(got, capturedRequest{scheduleRequest: req, auth: r.Header.Get("Authorization")})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), got...)
	}
}

func TestGatewaySchedulesExplicitOffset(t *testing.T) {
	srv, requests := gatewayServer(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	g := NewGateway(srv.URL, "tok", enabledSettings(), slog.Default())
	g.now = func() time.Time { return now }

	g.AssignmentChanged(model.Assignment{
		ID:              "hw-1",
		Title:           "Worksheet",
		DueAt:           now.Add(2 * time.Hour),
		RemindAtMinutes: intPtr(30),
	})
	if !g.Flush(1, 5*time.Second) {
		t.Fatal("gateway request did not complete")
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("requests = %d, want 1", len(got))
	}
	if got[0].Cancel {
		t.Error("expected schedule, got cancel")
	}
	if got[0].AssignmentID != "hw-1" || got[0].Title != "Reminder: Worksheet" {
		t.Errorf("payload = %+v", got[0].scheduleRequest)
	}
	if got[0].Body == "" {
		t.Error("expected non-empty body placeholder")
	}
	wantSendAt := now.Add(90 * time.Minute).Format(time.RFC3339)
	if got[0].SendAt != wantSendAt {
		t.Errorf("send_at = %q, want %q", got[0].SendAt, wantSendAt)
	}
	if got[0].auth != "Bearer tok" {
		t.Errorf("auth header = %q", got[0].auth)
	}
}

func TestGatewayNoOffsetCancels(t *testing.T) {
	// No explicit per-assignment offset means no durable reminder, even
	// though the in-process scheduler would fall back to the global
	// default for the same assignment.
	srv, requests := gatewayServer(t)
	g := NewGateway(srv.URL, "", enabledSettings(), slog.Default())

	g.AssignmentChanged(model.Assignment{ID: "hw-2", DueAt: time.Now().Add(time.Hour)})
	if !g.Flush(1, 5*time.Second) {
		t.Fatal("gateway request did not complete")
	}

	got := requests()
	if len(got) != 1 || !got[0].Cancel {
		t.Fatalf("expected a cancel request, got %+v", got)
	}
}

func TestGatewayDisabledCancels(t *testing.T) {
	srv, requests := gatewayServer(t)
	settings := enabledSettings()
	settings.cfg.NotificationsEnabled = false
	g := NewGateway(srv.URL, "", settings, slog.Default())

	g.AssignmentChanged(model.Assignment{
		ID:              "hw-3",
		DueAt:           time.Now().Add(time.Hour),
		RemindAtMinutes: intPtr(10),
	})
	if !g.Flush(1, 5*time.Second) {
		t.Fatal("gateway request did not complete")
	}

	got := requests()
	if len(got) != 1 || !got[0].Cancel {
		t.Fatalf("expected a cancel request, got %+v", got)
	}
}

func TestGatewayCompletedCancels(t *testing.T) {
	srv, requests := gatewayServer(t)
	g := NewGateway(srv.URL, "", enabledSettings(), slog.Default())

	g.AssignmentChanged(model.Assignment{
		ID:              "hw-4",
		DueAt:           time.Now().Add(time.Hour),
		RemindAtMinutes: intPtr(10),
		Completed:       true,
	})
	if !g.Flush(1, 5*time.Second) {
		t.Fatal("gateway request did not complete")
	}

	got := requests()
	if len(got) != 1 || !got[0].Cancel {
		t.Fatalf("expected a cancel request, got %+v", got)
	}
}

func TestGatewayPastDueClampsToNow(t *testing.T) {
	srv, requests := gatewayServer(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := NewGateway(srv.URL, "", enabledSettings(), slog.Default())
	g.now = func() time.Time { return now }

	g.AssignmentChanged(model.Assignment{
		ID:              "hw-5",
		DueAt:           now.Add(5 * time.Minute),
		RemindAtMinutes: intPtr(60),
	})
	if !g.Flush(1, 5*time.Second) {
		t.Fatal("gateway request did not complete")
	}

	got := requests()
	if got[0].SendAt != now.Format(time.RFC3339) {
		t.Errorf("send_at = %q, want clamped to now %q", got[0].SendAt, now.Format(time.RFC3339))
	}
}

func TestGatewayDispatchGoroutinesExit(t *testing.T) {
	var mu sync.Mutex
	received := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	g := NewGateway(srv.URL, "", enabledSettings(), slog.Default())
	before := runtime.NumGoroutine()

	// Well past the completion channel's capacity, with nothing draining
	// it. Every dispatch goroutine must still exit on its own.
	const total = 100
	for i := 0; i < total; i++ {
		g.AssignmentDeleted(fmt.Sprintf("hw-%d", i))
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := received == total
		mu.Unlock()
		if done && runtime.NumGoroutine() <= before+5 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("goroutines = %d after %d dispatches, started with %d", runtime.NumGoroutine(), total, before)
}

func TestGatewayFailureSwallowed(t *testing.T) {
	// Endpoint is gone; the calling path must not observe any error.
	g := NewGateway("http://127.0.0.1:1/schedule", "", enabledSettings(), slog.Default())

	g.AssignmentDeleted("hw-6")
	if !g.Flush(1, 30*time.Second) {
		t.Fatal("dispatch did not finish")
	}
}
