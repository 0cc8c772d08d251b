package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fraudlens/internal/types"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// SaveAlert stores the alert. CreatedAt defaults to the transaction
// timestamp when unset so prior-alert ordering stays meaningful.
func (s *Store) SaveAlert(ctx context.Context, alert types.Alert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = alert.TransactionTimestamp
	}

	raw, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("store: marshal alert %s: %w", alert.AlertID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO alerts
		(alert_id, customer_id, transaction_id, created_at, alert_json)
		VALUES (?, ?, ?, ?, ?)`,
		alert.AlertID, alert.CustomerID, alert.TransactionID,
		alert.CreatedAt.UTC().Format(time.RFC3339Nano), string(raw))
	if err != nil {
		return fmt.Errorf("store: save alert %s: %w", alert.AlertID, err)
	}
	return nil
}

// GetAlert returns the stored alert by ID.
func (s *Store) GetAlert(ctx context.Context, alertID string) (types.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT alert_json FROM alerts WHERE alert_id = ?`, alertID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
	}
	if err != nil {
		return types.Alert{}, fmt.Errorf("store: get alert %s: %w", alertID, err)
	}

	var alert types.Alert
	if err := json.Unmarshal([]byte(raw), &alert); err != nil {
		return types.Alert{}, fmt.Errorf("store: decode alert %s: %w", alertID, err)
	}
	return alert, nil
}

// PriorAlerts returns the customer's alerts other than excludeAlertID,
// newest first.
func (s *Store) PriorAlerts(ctx context.Context, customerID, excludeAlertID string) ([]types.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT alert_json FROM alerts
		WHERE customer_id = ? AND alert_id != ?
		ORDER BY created_at DESC`, customerID, excludeAlertID)
	if err != nil {
		return nil, fmt.Errorf("store: query prior alerts: %w", err)
	}
	defer rows.Close()

	var out []types.Alert
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("store: scan alert: %w", err)
		}
		var alert types.Alert
		if err := json.Unmarshal([]byte(raw), &alert); err != nil {
			return nil, fmt.Errorf("store: decode alert: %w", err)
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}
