package push

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/store"
)

// defaultBatchSize bounds how many due rows one sweep pass picks up.
const defaultBatchSize = 100

// Sender delivers one payload to one subscription. *Service implements it;
// tests substitute a fake transport.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Summary is the operational result of one sweep pass.
type Summary struct {
	Processed int `json:"processed"`
	Successes int `json:"successes"`
	Pruned    int `json:"pruned"`
	Errors    int `json:"errors"`
}

// Sweep finds due, unsent reminder rows and attempts delivery to every
// subscription of each row's owner. Marking sent_at is the commit point:
// overlapping sweep runs may double-send a row both picked up before either
// committed, which is tolerated at-least-once behavior, but a committed row
// is never selected again.
type Sweep struct {
	notifications *store.NotificationStore
	subscriptions *store.SubscriptionStore
	sender        Sender
	batchSize     int
	logger        *slog.Logger
	now           func() time.Time
}

func NewSweep(ns *store.NotificationStore, ss *store.SubscriptionStore, sender Sender, logger *slog.Logger) *Sweep {
	return &Sweep{
		notifications: ns,
		subscriptions: ss,
		sender:        sender,
		batchSize:     defaultBatchSize,
		logger:        logger,
		now:           time.Now,
	}
}

// Run executes one sweep pass. A row is marked sent as soon as any one of
// its owner's subscriptions accepts the payload; rows whose every delivery
// failed stay pending and are retried on the next pass. Subscriptions the
// push service reports gone are deleted in place.
func (s *Sweep) Run() (Summary, error) {
	var sum Summary

	due, err := s.notifications.ListDue(s.now(), s.batchSize)
	if err != nil {
		return sum, fmt.Errorf("sweep list due: %w", err)
	}

	for _, row := range due {
		sum.Processed++

		subs, err := s.subscriptions.ListByUser(row.UserID)
		if err != nil {
			s.logger.Error("sweep list subscriptions", "notification_id", row.ID, "error", err)
			sum.Errors++
			continue
		}

		payload := Payload{
			Title:        row.Title,
			Body:         row.Body,
			URL:          row.URL,
			Tag:          "assignment-" + row.AssignmentID,
			AssignmentID: row.AssignmentID,
		}

		delivered := false
		for i := range subs {
			err := s.sender.Send(&subs[i], payload)
			switch {
			case err == nil:
				delivered = true
				sum.Successes++
			case errors.Is(err, ErrExpired):
				if err := s.subscriptions.DeleteByEndpoint(subs[i].Endpoint); err != nil {
					s.logger.Error("sweep prune subscription", "endpoint", subs[i].Endpoint, "error", err)
					sum.Errors++
					continue
				}
				sum.Pruned++
			default:
				s.logger.Warn("sweep delivery failed", "notification_id", row.ID, "error", err)
				sum.Errors++
			}
		}

		if delivered {
			if err := s.notifications.MarkSent(row.ID, s.now()); err != nil {
				s.logger.Error("sweep mark sent", "notification_id", row.ID, "error", err)
				sum.Errors++
			}
		}
	}

	return sum, nil
}
