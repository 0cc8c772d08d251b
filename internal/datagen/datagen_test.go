package datagen

import (
	"strings"
	"testing"
	"time"

	"fraudlens/internal/types"
)

var testBase = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateDeterministicForSeed(t *testing.T) {
	a := New(42).Generate(2, 10, testBase)
	b := New(42).Generate(2, 10, testBase)

	if len(a) != 20 || len(b) != 20 {
		t.Fatalf("len = %d, %d, want 20 each", len(a), len(b))
	}
	for i := range a {
		if a[i].TransactionID != b[i].TransactionID ||
			a[i].Amount != b[i].Amount ||
			!a[i].Timestamp.Equal(b[i].Timestamp) ||
			a[i].MerchantID != b[i].MerchantID ||
			a[i].PaymentSubType != b[i].PaymentSubType {
			t.Fatalf("transaction %d differs between runs with same seed", i)
		}
	}
}

func TestGenerateShape(t *testing.T) {
	txs := New(1).Generate(3, 25, testBase)
	if len(txs) != 75 {
		t.Fatalf("len = %d, want 75", len(txs))
	}

	customers := map[string]int{}
	for i, tx := range txs {
		customers[tx.CustomerID]++
		if tx.TransactionID == "" || tx.MerchantID == "" {
			t.Errorf("transaction %d missing identifiers: %+v", i, tx)
		}
		if tx.Amount <= 0 {
			t.Errorf("transaction %d has non-positive amount %v", i, tx.Amount)
		}
		if !tx.Timestamp.Before(testBase) {
			t.Errorf("transaction %d not in the past: %v", i, tx.Timestamp)
		}
		if mcc, ok := categoryMCCs[tx.MerchantCategory]; !ok || mcc != tx.MerchantCategoryCode {
			t.Errorf("transaction %d category/mcc mismatch: %s/%s", i, tx.MerchantCategory, tx.MerchantCategoryCode)
		}
		if i > 0 && txs[i-1].Timestamp.Before(tx.Timestamp) {
			t.Errorf("transactions not sorted newest first at %d", i)
		}

		band := amountRanges[tx.MerchantCategory]
		if tx.Amount < band[0] || tx.Amount > band[1] {
			t.Errorf("transaction %d amount %v outside %s band %v", i, tx.Amount, tx.MerchantCategory, band)
		}
	}
	if len(customers) != 3 {
		t.Errorf("distinct customers = %d, want 3", len(customers))
	}
	for id, n := range customers {
		if n != 25 {
			t.Errorf("customer %s has %d transactions, want 25", id, n)
		}
	}
}

func TestAttachmentRules(t *testing.T) {
	txs := New(7).Generate(5, 100, testBase)
	for _, tx := range txs {
		switch tx.PaymentMethod {
		case types.MethodCardNotPresent:
			if tx.IPAddress == "" {
				t.Errorf("%s: card-not-present without ip_address", tx.TransactionID)
			}
			if tx.Latitude != nil || tx.Longitude != nil {
				t.Errorf("%s: card-not-present with coordinates", tx.TransactionID)
			}
			if tx.PINVerified {
				t.Errorf("%s: card-not-present with PIN", tx.TransactionID)
			}
		case types.MethodCardPresent, types.MethodContactless:
			if tx.Latitude == nil || tx.Longitude == nil {
				t.Errorf("%s: terminal transaction without coordinates", tx.TransactionID)
			}
			if tx.IPAddress != "" {
				t.Errorf("%s: terminal transaction with ip_address", tx.TransactionID)
			}
		default:
			t.Errorf("%s: unknown payment method %q", tx.TransactionID, tx.PaymentMethod)
		}

		hasDevice := tx.DeviceID != ""
		wantsDevice := tx.PaymentSubType == types.SubTypeTokenNFC || tx.PaymentSubType == types.SubTypeMobileWallet
		if hasDevice != wantsDevice {
			t.Errorf("%s: device_id presence %v for sub type %q", tx.TransactionID, hasDevice, tx.PaymentSubType)
		}
		if tx.PaymentMethod == types.MethodContactless && tx.PINVerified {
			t.Errorf("%s: contactless with PIN", tx.TransactionID)
		}
	}
}

func TestVelocityBurstGaps(t *testing.T) {
	txs := New(3).GenerateVelocityBurst(1, 10, testBase)
	if len(txs) != 10 {
		t.Fatalf("len = %d, want 10", len(txs))
	}
	// Newest first, so each consecutive pair is 1 to 5 minutes apart.
	for i := 1; i < len(txs); i++ {
		gap := txs[i-1].Timestamp.Sub(txs[i].Timestamp)
		if gap < time.Minute || gap > 5*time.Minute {
			t.Errorf("gap %d = %v, want between 1m and 5m", i, gap)
		}
	}
}

func TestAnomalousAlert(t *testing.T) {
	alert := New(1).AnomalousAlert("cust_1", testBase)
	if err := alert.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if !strings.HasPrefix(alert.AlertID, "alert_") {
		t.Errorf("AlertID = %q", alert.AlertID)
	}
	if alert.TransactionAmount != 50000 {
		t.Errorf("TransactionAmount = %v, want 50000", alert.TransactionAmount)
	}
	if alert.PaymentMethod != types.MethodCardNotPresent || alert.PINVerified {
		t.Errorf("payment profile = %s/%v, want card-not-present without PIN", alert.PaymentMethod, alert.PINVerified)
	}
	if alert.MerchantCategory != "Electronics" {
		t.Errorf("MerchantCategory = %q", alert.MerchantCategory)
	}
}

func TestSampleAlertCarriesAmount(t *testing.T) {
	alert := New(9).SampleAlert("cust_2", 1234.56, testBase)
	if err := alert.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if alert.CustomerID != "cust_2" {
		t.Errorf("CustomerID = %q", alert.CustomerID)
	}
	if alert.TransactionAmount != 1234.56 {
		t.Errorf("TransactionAmount = %v, want 1234.56", alert.TransactionAmount)
	}
}
