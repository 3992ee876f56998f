package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/EanHD/homework-app/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationCols = `id, user_id, assignment_id, title, body, url, send_at, sent_at, created_at, updated_at`

func scanNotification(scanner interface{ Scan(...any) error }) (*model.ScheduledNotification, error) {
	var n model.ScheduledNotification
	var userID sql.NullString
	var sentAt sql.NullTime
	err := scanner.Scan(&n.ID, &userID, &n.AssignmentID, &n.Title, &n.Body, &n.URL,
		&n.SendAt, &sentAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		u := userID.String
		n.UserID = &u
	}
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	return &n, nil
}

// Upsert inserts a reminder row for (assignmentID, userID). When a row for
// that key already exists the insert hits the unique index and falls back to
// an update that rewrites title/body/url/send_at and clears sent_at, which
// re-arms a previously sent or cancelled reminder. This is what makes
// reschedule idempotent without a read-then-write round trip.
func (s *NotificationStore) Upsert(userID *string, assignmentID, title, body, url string, sendAt time.Time) (*model.ScheduledNotification, error) {
	_, err := s.db.Exec(
		`INSERT INTO scheduled_notifications (user_id, assignment_id, title, body, url, send_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullUser(userID), assignmentID, title, body, url, sendAt.UTC(),
	)
	if err != nil {
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("insert scheduled notification: %w", err)
		}
		_, err = s.db.Exec(
			`UPDATE scheduled_notifications
			 SET title = ?, body = ?, url = ?, send_at = ?, sent_at = NULL, updated_at = CURRENT_TIMESTAMP
			 WHERE assignment_id = ? AND user_id IS ?`,
			title, body, url, sendAt.UTC(), assignmentID, nullUser(userID),
		)
		if err != nil {
			return nil, fmt.Errorf("update scheduled notification: %w", err)
		}
	}
	return s.GetByKey(assignmentID, userID)
}

// GetByKey returns the row for (assignmentID, userID), or nil.
func (s *NotificationStore) GetByKey(assignmentID string, userID *string) (*model.ScheduledNotification, error) {
	row := s.db.QueryRow(
		`SELECT `+notificationCols+` FROM scheduled_notifications
		 WHERE assignment_id = ? AND user_id IS ?`,
		assignmentID, nullUser(userID),
	)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled notification: %w", err)
	}
	return n, nil
}

// CancelPending stamps sent_at on every unsent row for the key and returns
// how many rows were affected. Zero is a normal outcome: cancelling a
// reminder that was never scheduled is idempotent.
func (s *NotificationStore) CancelPending(userID *string, assignmentID string, at time.Time) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE scheduled_notifications
		 SET sent_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE assignment_id = ? AND user_id IS ? AND sent_at IS NULL`,
		at.UTC(), assignmentID, nullUser(userID),
	)
	if err != nil {
		return 0, fmt.Errorf("cancel scheduled notifications: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel rows affected: %w", err)
	}
	return count, nil
}

// ListDue returns up to limit unsent rows whose send_at has passed, oldest
// first. Already-sent rows are filtered out here, which is what makes
// overlapping sweep runs converge.
func (s *NotificationStore) ListDue(now time.Time, limit int) ([]model.ScheduledNotification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM scheduled_notifications
		 WHERE sent_at IS NULL AND send_at <= ?
		 ORDER BY send_at ASC LIMIT ?`,
		now.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()

	var due []model.ScheduledNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due notification: %w", err)
		}
		due = append(due, *n)
	}
	return due, rows.Err()
}

// MarkSent stamps a row as delivered.
func (s *NotificationStore) MarkSent(id int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE scheduled_notifications SET sent_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

func nullUser(userID *string) any {
	if userID == nil {
		return nil
	}
	return *userID
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
