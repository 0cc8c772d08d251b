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

// SaveReport persists a completed investigation.
func (s *Store) SaveReport(ctx context.Context, report types.InvestigationReport) error {
	if report.InvestigationID == "" {
		return fmt.Errorf("store: report missing investigation_id")
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("store: marshal report %s: %w", report.InvestigationID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO investigations
		(investigation_id, alert_id, customer_id, verdict, action,
		 false_positive, started_at, finished_at, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.InvestigationID, report.Alert.AlertID, report.Alert.CustomerID,
		string(report.Verdict), string(report.Action),
		boolToInt(report.FalsePositive()),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(raw))
	if err != nil {
		return fmt.Errorf("store: save report %s: %w", report.InvestigationID, err)
	}
	return nil
}

// GetReport returns the investigation by ID.
func (s *Store) GetReport(ctx context.Context, investigationID string) (types.InvestigationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM investigations WHERE investigation_id = ?`,
		investigationID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.InvestigationReport{}, fmt.Errorf("%w: investigation %s", ErrNotFound, investigationID)
	}
	if err != nil {
		return types.InvestigationReport{}, fmt.Errorf("store: get report %s: %w", investigationID, err)
	}

	var report types.InvestigationReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return types.InvestigationReport{}, fmt.Errorf("store: decode report %s: %w", investigationID, err)
	}
	return report, nil
}

// ReportSummary is a listing row, small enough for index pages.
type ReportSummary struct {
	InvestigationID string        `json:"investigation_id"`
	AlertID         string        `json:"alert_id"`
	CustomerID      string        `json:"customer_id"`
	Verdict         types.Verdict `json:"verdict"`
	Action          types.Action  `json:"recommended_action"`
	FalsePositive   bool          `json:"false_positive"`
	FinishedAt      time.Time     `json:"finished_at"`
}

// ListReports returns summaries of the most recent investigations, newest
// first. limit <= 0 means no limit.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT investigation_id, alert_id, customer_id, verdict, action,
		false_positive, finished_at
		FROM investigations ORDER BY finished_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var r ReportSummary
		var fp int
		var finished string
		if err := rows.Scan(&r.InvestigationID, &r.AlertID, &r.CustomerID,
			&r.Verdict, &r.Action, &fp, &finished); err != nil {
			return nil, fmt.Errorf("store: scan report summary: %w", err)
		}
		r.FalsePositive = fp != 0
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("store: parse finished_at %q: %w", finished, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
