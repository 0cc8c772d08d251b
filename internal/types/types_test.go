package types

import (
	"testing"
	"time"
)

func TestAlertValidate(t *testing.T) {
	base := Alert{
		AlertID:              "alert_001",
		CustomerID:           "cust_001",
		TransactionID:        "tx_001",
		TransactionAmount:    1200,
		TransactionTimestamp: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(*Alert)
		wantErr bool
	}{
		{"valid", func(a *Alert) {}, false},
		{"missing alert id", func(a *Alert) { a.AlertID = "" }, true},
		{"missing customer id", func(a *Alert) { a.CustomerID = "" }, true},
		{"missing transaction id", func(a *Alert) { a.TransactionID = "" }, true},
		{"zero timestamp", func(a *Alert) { a.TransactionTimestamp = time.Time{} }, true},
		{"negative amount", func(a *Alert) { a.TransactionAmount = -1 }, true},
		{"zero amount ok", func(a *Alert) { a.TransactionAmount = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlertTransaction(t *testing.T) {
	lat, lon := 19.076, 72.877
	a := Alert{
		AlertID:              "alert_002",
		CustomerID:           "cust_001",
		TransactionID:        "tx_002",
		MerchantID:           "merchant_cust_001_Grocery_1",
		TransactionAmount:    450.50,
		TransactionTimestamp: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		MerchantCategory:     "Grocery",
		MerchantCategoryCode: "5411",
		PaymentMethod:        MethodCardPresent,
		PaymentSubType:       SubTypeEMVChip,
		PINVerified:          true,
		Latitude:             &lat,
		Longitude:            &lon,
	}

	tx := a.Transaction()
	if tx.TransactionID != a.TransactionID {
		t.Errorf("TransactionID = %q, want %q", tx.TransactionID, a.TransactionID)
	}
	if tx.Amount != a.TransactionAmount {
		t.Errorf("Amount = %v, want %v", tx.Amount, a.TransactionAmount)
	}
	if tx.Timestamp != a.TransactionTimestamp {
		t.Errorf("Timestamp = %v, want %v", tx.Timestamp, a.TransactionTimestamp)
	}
	if !tx.HasGeo() {
		t.Error("HasGeo() = false, want true")
	}
	if !tx.IsCardPresent() {
		t.Error("IsCardPresent() = false, want true")
	}
}

func TestVerdictIsFraud(t *testing.T) {
	tests := []struct {
		v    Verdict
		want bool
	}{
		{VerdictNotFraud, false},
		{VerdictProbableFraud, true},
		{VerdictProbableFraudHigh, true},
		{VerdictProbableFraudLess, true},
		{Verdict(""), false},
	}
	for _, tt := range tests {
		if got := tt.v.IsFraud(); got != tt.want {
			t.Errorf("%q.IsFraud() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.85, 0.85},
		{85, 0.85},
		{-0.2, 0},
		{0, 0},
		{1, 1},
		{100, 1},
	}
	for _, tt := range tests {
		r := AgentResult{ConfidenceScore: tt.in}
		r.ClampConfidence()
		if r.ConfidenceScore != tt.want {
			t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, r.ConfidenceScore, tt.want)
		}
	}
}

func TestReportFalsePositive(t *testing.T) {
	fp := AgentResult{AlertIsFalsePositive: true}
	fraud := AgentResult{AlertIsFalsePositive: false}

	tests := []struct {
		name    string
		results []AgentResult
		want    bool
	}{
		{"no results", nil, false},
		{"all clear", []AgentResult{fp, fp}, true},
		{"one fraud", []AgentResult{fp, fraud}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := InvestigationReport{AgentResults: tt.results}
			if got := r.FalsePositive(); got != tt.want {
				t.Errorf("FalsePositive() = %v, want %v", got, tt.want)
			}
		})
	}
}
