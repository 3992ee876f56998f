package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/EanHD/homework-app/internal/model"
)

// Gateway mirrors assignment changes to the durable reminder endpoint. Every
// call is dispatch-and-discard: the request runs in its own goroutine with a
// short retry budget and any failure ends up in the log sink, never at the
// caller. The in-process scheduler remains the safety net for the current
// session, so a lost gateway call costs durability, not correctness.
type Gateway struct {
	endpoint string
	token    string
	client   *http.Client
	settings SettingsSource
	logger   *slog.Logger
	now      func() time.Time

	// dispatched lets tests wait for in-flight requests. Nobody drains it
	// in production, so sends must never block.
	dispatched chan struct{}
}

type scheduleRequest struct {
	AssignmentID string `json:"assignment_id"`
	Title        string `json:"title,omitempty"`
	Body         string `json:"body"`
	SendAt       string `json:"send_at,omitempty"`
	URL          string `json:"url,omitempty"`
	Cancel       bool   `json:"cancel,omitempty"`
}

// NewGateway creates a gateway posting to the given schedule endpoint URL.
// token may be empty for anonymous scheduling.
func NewGateway(endpoint, token string, settings SettingsSource, logger *slog.Logger) *Gateway {
	return &Gateway{
		endpoint:   endpoint,
		token:      token,
		client:     &http.Client{Timeout: 10 * time.Second},
		settings:   settings,
		logger:     logger,
		now:        time.Now,
		dispatched: make(chan struct{}, 64),
	}
}

// AssignmentChanged reconciles the durable reminder row after a create or
// update. Only an assignment with its own explicit offset gets a server
// reminder; the global default applies to the in-process path only. A
// completed assignment, a cleared offset, or disabled notifications all turn
// into a cancel so no unsent row outlives the state that justified it.
func (g *Gateway) AssignmentChanged(a model.Assignment) {
	cfg, err := g.settings.ReminderSettings()
	if err != nil {
		g.logger.Debug("gateway settings read failed", "error", err)
		return
	}

	off := ResolveRemoteOffset(a)
	if !cfg.NotificationsEnabled || a.Completed || off.Kind == OffsetNone {
		g.AssignmentDeleted(a.ID)
		return
	}

	sendAt := FireTime(a.DueAt, off)
	if now := g.now(); sendAt.Before(now) {
		sendAt = now
	}

	req := scheduleRequest{
		AssignmentID: a.ID,
		Title:        "Reminder: " + a.Title,
		Body:         "Homework due soon",
		SendAt:       sendAt.UTC().Format(time.RFC3339),
		URL:          "/assignments/" + a.ID,
	}
	g.dispatch(req)
}

// AssignmentDeleted cancels the durable reminder row unconditionally.
func (g *Gateway) AssignmentDeleted(id string) {
	g.dispatch(scheduleRequest{AssignmentID: id, Cancel: true})
}

func (g *Gateway) dispatch(req scheduleRequest) {
	go func() {
		defer func() {
			select {
			case g.dispatched <- struct{}{}:
			default:
			}
		}()
		if err := g.post(req); err != nil {
			g.logger.Debug("reminder gateway request failed", "assignment_id", req.AssignmentID, "cancel", req.Cancel, "error", err)
		}
	}()
}

func (g *Gateway) post(req scheduleRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal schedule request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if g.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+g.token)
		}

		resp, err := g.client.Do(httpReq)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("schedule endpoint returned %d", resp.StatusCode))
		default:
			// 4xx will not get better on retry.
			return fmt.Errorf("schedule endpoint returned %d", resp.StatusCode)
		}
	})
}

// Flush waits for n dispatched requests to finish. Test helper.
func (g *Gateway) Flush(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for i := 0; i < n; i++ {
		select {
		case <-g.dispatched:
		case <-deadline:
			return false
		}
	}
	return true
}
