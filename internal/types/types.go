// Package types provides shared domain types used across fraudlens packages.
// This package exists to break import cycles between checks, agents, and the
// pipeline. Types here are foundational data structures with no dependencies
// beyond the standard library.
package types

import (
	"fmt"
	"time"
)

// RiskLevel grades a single check finding.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Verdict is the fraud assessment a check or agent attaches to an alert.
type Verdict string

const (
	VerdictNotFraud          Verdict = "Not Fraud"
	VerdictProbableFraud     Verdict = "Probable Fraud"
	VerdictProbableFraudHigh Verdict = "Probable Fraud (High)"
	VerdictProbableFraudLess Verdict = "Probable Fraud (Less)"
)

// IsFraud reports whether the verdict flags the alert as likely fraudulent.
func (v Verdict) IsFraud() bool {
	return v != VerdictNotFraud && v != ""
}

// Action is the recommended disposition for an investigated alert.
type Action string

const (
	ActionAllow       Action = "ALLOW"
	ActionBlock       Action = "BLOCK"
	ActionMonitor     Action = "MONITOR"
	ActionInvestigate Action = "INVESTIGATE"
)

// Payment method and sub type values as they appear on the wire.
const (
	MethodCardPresent    = "Card Present"
	MethodContactless    = "Contactless"
	MethodCardNotPresent = "Card Not Present"

	SubTypeMagStripe    = "Mag Stripe"
	SubTypeEMVChip      = "EMV Chip"
	SubTypeTokenNFC     = "Token NFC"
	SubTypeTapToPay     = "Tap to Pay"
	SubTypeMobileWallet = "Mobile Wallet"
	SubTypeOnline       = "Online"
)

// Transaction is a single card transaction in a customer's history.
// JSON tags match the snake_case wire format of the data files.
type Transaction struct {
	TransactionID        string    `json:"transaction_id"`
	CustomerID           string    `json:"customer_id"`
	MerchantID           string    `json:"merchant_id"`
	Amount               float64   `json:"amount"`
	Timestamp            time.Time `json:"timestamp"`
	MerchantCategory     string    `json:"merchant_category"`
	MerchantCategoryCode string    `json:"merchant_category_code"`
	Location             string    `json:"location"`
	Country              string    `json:"country"`
	Currency             string    `json:"currency"`
	PaymentMethod        string    `json:"payment_method"`
	PaymentSubType       string    `json:"payment_sub_type"`
	PINVerified          bool      `json:"pin_verified"`
	DeviceID             string    `json:"device_id,omitempty"`
	IPAddress            string    `json:"ip_address,omitempty"`
	Latitude             *float64  `json:"latitude,omitempty"`
	Longitude            *float64  `json:"longitude,omitempty"`
}

// IsCardPresent reports whether the transaction was made with the physical
// card at a terminal. Contactless counts as card present for geo checks.
func (t Transaction) IsCardPresent() bool {
	return t.PaymentMethod == MethodCardPresent || t.PaymentMethod == MethodContactless
}

// HasGeo reports whether the transaction carries coordinates.
func (t Transaction) HasGeo() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// Alert is a transaction flagged by upstream fraud detection for
// investigation.
type Alert struct {
	AlertID              string    `json:"alert_id"`
	CustomerID           string    `json:"customer_id"`
	TransactionID        string    `json:"transaction_id"`
	MerchantID           string    `json:"merchant_id"`
	TransactionAmount    float64   `json:"transaction_amount"`
	TransactionTimestamp time.Time `json:"transaction_timestamp"`
	MerchantCategory     string    `json:"merchant_category"`
	MerchantCategoryCode string    `json:"merchant_category_code"`
	Location             string    `json:"location"`
	Country              string    `json:"country"`
	Currency             string    `json:"currency"`
	PaymentMethod        string    `json:"payment_method"`
	PaymentSubType       string    `json:"payment_sub_type"`
	PINVerified          bool      `json:"pin_verified"`
	DeviceID             string    `json:"device_id,omitempty"`
	IPAddress            string    `json:"ip_address,omitempty"`
	Latitude             *float64  `json:"latitude,omitempty"`
	Longitude            *float64  `json:"longitude,omitempty"`
	CreatedAt            time.Time `json:"created_at,omitempty"`
}

// Transaction projects the alert's embedded transaction so that checks can
// treat the flagged transaction uniformly with history entries.
func (a Alert) Transaction() Transaction {
	return Transaction{
		TransactionID:        a.TransactionID,
		CustomerID:           a.CustomerID,
		MerchantID:           a.MerchantID,
		Amount:               a.TransactionAmount,
		Timestamp:            a.TransactionTimestamp,
		MerchantCategory:     a.MerchantCategory,
		MerchantCategoryCode: a.MerchantCategoryCode,
		Location:             a.Location,
		Country:              a.Country,
		Currency:             a.Currency,
		PaymentMethod:        a.PaymentMethod,
		PaymentSubType:       a.PaymentSubType,
		PINVerified:          a.PINVerified,
		DeviceID:             a.DeviceID,
		IPAddress:            a.IPAddress,
		Latitude:             a.Latitude,
		Longitude:            a.Longitude,
	}
}

// Validate checks the minimum fields an alert needs before investigation.
func (a Alert) Validate() error {
	switch {
	case a.AlertID == "":
		return fmt.Errorf("alert: missing alert_id")
	case a.CustomerID == "":
		return fmt.Errorf("alert %s: missing customer_id", a.AlertID)
	case a.TransactionID == "":
		return fmt.Errorf("alert %s: missing transaction_id", a.AlertID)
	case a.TransactionTimestamp.IsZero():
		return fmt.Errorf("alert %s: missing transaction_timestamp", a.AlertID)
	case a.TransactionAmount < 0:
		return fmt.Errorf("alert %s: negative transaction_amount", a.AlertID)
	}
	return nil
}

// CheckResult is the typed outcome of a single analysis check.
type CheckResult struct {
	CheckName   string         `json:"check_name"`
	Success     bool           `json:"success"`
	Result      map[string]any `json:"result,omitempty"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Analysis    string         `json:"analysis,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// AgentResult is the structured verdict an analysis agent produces for an
// alert, either parsed from the model's JSON reply or synthesized offline.
type AgentResult struct {
	AgentName            string   `json:"agent_name"`
	AlertIsFalsePositive bool     `json:"alert_is_false_positive"`
	Findings             string   `json:"findings"`
	DetailedExplanation  string   `json:"detailed_explanation"`
	ConfidenceScore      float64  `json:"confidence_score"`
	Recommendations      []string `json:"recommendations,omitempty"`
}

// ClampConfidence keeps confidence in [0, 1]. Model replies occasionally
// return percentages.
func (r *AgentResult) ClampConfidence() {
	if r.ConfidenceScore > 1 && r.ConfidenceScore <= 100 {
		r.ConfidenceScore /= 100
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
}

// InvestigationReport is the full output of a pipeline run for one alert.
type InvestigationReport struct {
	InvestigationID string        `json:"investigation_id"`
	Alert           Alert         `json:"alert"`
	AgentResults    []AgentResult `json:"agent_results"`
	CheckResults    []CheckResult `json:"check_results,omitempty"`
	Verdict         Verdict       `json:"verdict"`
	Action          Action        `json:"recommended_action"`
	Summary         string        `json:"summary,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
}

// FalsePositive reports whether every agent cleared the alert.
func (r InvestigationReport) FalsePositive() bool {
	if len(r.AgentResults) == 0 {
		return false
	}
	for _, ar := range r.AgentResults {
		if !ar.AlertIsFalsePositive {
			return false
		}
	}
	return true
}
