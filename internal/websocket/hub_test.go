package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/EanHD/homework-app/internal/reminder"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage("assignment", "created", "hw-42", map[string]any{"class_id": "cls-1"})
	hub.Broadcast(msg)

	// Check both clients received the message
	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "assignment_created" {
				t.Errorf("expected type assignment_created, got %s", got.Type)
			}
			if got.Entity != "assignment" {
				t.Errorf("expected entity assignment, got %s", got.Entity)
			}
			if got.ID != "hw-42" {
				t.Errorf("expected id hw-42, got %s", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	msg := NewMessage("assignment", "completed", "hw-1", nil)
	hub.Broadcast(msg)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", fmt.Sprintf("%d", i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(NewMessage("test", "dropped", "999", nil))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("settings", "updated", "", nil)
	if msg.Type != "settings_updated" {
		t.Errorf("expected type settings_updated, got %s", msg.Type)
	}
	if msg.Entity != "settings" {
		t.Errorf("expected entity settings, got %s", msg.Entity)
	}
	if msg.Action != "updated" {
		t.Errorf("expected action updated, got %s", msg.Action)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("test", "concurrent", "x", nil))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestReminderNotifier(t *testing.T) {
	hub := NewHub(slog.Default())
	notifier := NewReminderNotifier(hub)

	if notifier.PermissionGranted() {
		t.Fatal("expected no permission with zero clients")
	}

	c := mockClient(hub)
	hub.Register(c)

	if !notifier.PermissionGranted() {
		t.Fatal("expected permission with a connected client")
	}

	err := notifier.Show(reminder.Notification{
		AssignmentID: "hw-7",
		Title:        "Reminder: Essay",
		Body:         "English · due at 3:00 PM",
		URL:          "/assignments/hw-7",
		Tag:          "assignment-hw-7",
	})
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "reminder_fired" {
			t.Errorf("expected type reminder_fired, got %s", got.Type)
		}
		if got.ID != "hw-7" {
			t.Errorf("expected id hw-7, got %s", got.ID)
		}
		if got.Extra["title"] != "Reminder: Essay" {
			t.Errorf("unexpected title %v", got.Extra["title"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for reminder")
	}

	hub.Unregister(c)
}
