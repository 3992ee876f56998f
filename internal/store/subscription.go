package store

import (
	"database/sql"
	"fmt"

	"github.com/EanHD/homework-app/internal/model"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const subscriptionCols = `id, user_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	var userID sql.NullString
	err := scanner.Scan(&sub.ID, &userID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		u := userID.String
		sub.UserID = &u
	}
	return &sub, nil
}

// Replace deletes any prior subscriptions for the identity and inserts the
// new one, all in one transaction. Authenticated callers are matched by
// user_id, anonymous callers by endpoint, so repeated permission re-grants
// never accumulate stale endpoints.
func (s *SubscriptionStore) Replace(userID *string, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin replace subscription: %w", err)
	}
	defer tx.Rollback()

	if userID != nil {
		_, err = tx.Exec(`DELETE FROM push_subscriptions WHERE user_id = ?`, *userID)
	} else {
		_, err = tx.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("delete prior subscriptions: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?)`,
		nullUser(userID), endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("subscription insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace subscription: %w", err)
	}
	return s.GetByID(id)
}

func (s *SubscriptionStore) GetByID(id int64) (*model.PushSubscription, error) {
	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// ListByUser returns all subscriptions registered under the given identity;
// nil matches anonymous subscriptions.
func (s *SubscriptionStore) ListByUser(userID *string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE user_id IS ? ORDER BY created_at DESC`,
		nullUser(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// Delete removes the subscription matching both endpoint and identity.
// A caller cannot delete another identity's subscription even if they know
// the endpoint string.
func (s *SubscriptionStore) Delete(endpoint string, userID *string) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM push_subscriptions WHERE endpoint = ? AND user_id IS ?`,
		endpoint, nullUser(userID),
	)
	if err != nil {
		return 0, fmt.Errorf("delete subscription: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete rows affected: %w", err)
	}
	return count, nil
}

// DeleteByEndpoint removes a subscription regardless of owner. Used by the
// delivery sweep when the push service reports the endpoint gone.
func (s *SubscriptionStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription by endpoint: %w", err)
	}
	return nil
}
