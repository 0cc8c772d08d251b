package transaction

import (
	"fmt"
	"testing"
	"time"

	"fraudlens/internal/types"
)

func TestPINVerifiedNotApplicable(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.PINVerified = false

	res := analyzePINVerified(testInput(alert, nil))
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW for non-PIN transaction", got)
	}
}

func TestPINVerifiedConsistent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	var history []types.Transaction
	for i := 1; i <= 10; i++ {
		history = append(history, groceryTx(fmt.Sprintf("p%d", i), at.AddDate(0, 0, -i), 500))
	}

	res := analyzePINVerified(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW", got)
	}
}

func TestPINVerifiedAnomalous(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 50000)
	alert.Location = "Somewhere New"
	alert.MerchantID = "merchant_unknown"

	var history []types.Transaction
	for i := 1; i <= 10; i++ {
		tx := groceryTx(fmt.Sprintf("p%d", i), at.AddDate(0, 0, -i), 500)
		tx.PINVerified = false
		history = append(history, tx)
	}

	res := analyzePINVerified(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestCardPresentNoHistory(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	var history []types.Transaction
	for i := 1; i <= 5; i++ {
		tx := groceryTx(fmt.Sprintf("o%d", i), at.AddDate(0, 0, -i), 500)
		tx.PaymentMethod = types.MethodCardNotPresent
		tx.PaymentSubType = types.SubTypeOnline
		history = append(history, tx)
	}

	res := analyzeCardPresent(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH with no card-present history", got)
	}
}

func TestCardPresentRoutine(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	var history []types.Transaction
	for i := 1; i <= 10; i++ {
		history = append(history, groceryTx(fmt.Sprintf("cp%d", i), at.AddDate(0, 0, -i), 500))
	}

	res := analyzeCardPresent(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW", got)
	}
}

func TestSameSubnet24(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"192.168.1.10", "192.168.1.99", true},
		{"192.168.1.10", "192.168.2.10", false},
		{"not-an-ip", "192.168.1.10", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := sameSubnet24(tt.a, tt.b); got != tt.want {
			t.Errorf("sameSubnet24(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCardNotPresentNewSubnetAndMerchant(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.PaymentMethod = types.MethodCardNotPresent
	alert.PaymentSubType = types.SubTypeOnline
	alert.MerchantID = "online_merchant_new"
	alert.IPAddress = "10.1.1.5"

	var history []types.Transaction
	for i := 1; i <= 4; i++ {
		tx := groceryTx(fmt.Sprintf("o%d", i), at.AddDate(0, 0, -i), 500)
		tx.PaymentMethod = types.MethodCardNotPresent
		tx.PaymentSubType = types.SubTypeOnline
		tx.MerchantID = "online_merchant_usual"
		tx.IPAddress = "192.168.1.10"
		history = append(history, tx)
	}

	res := analyzeCardNotPresent(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestContactlessNoHistory(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.PaymentMethod = types.MethodContactless
	alert.PaymentSubType = types.SubTypeTapToPay

	res := analyzeContactless(testInput(alert, []types.Transaction{
		groceryTx("c1", at.AddDate(0, 0, -1), 500),
	}))
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH with no contactless history", got)
	}
}

func TestMagStripeChipFirstCustomer(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.PaymentSubType = types.SubTypeMagStripe
	alert.Location = "Unknown Kiosk"

	var history []types.Transaction
	for i := 1; i <= 10; i++ {
		history = append(history, groceryTx(fmt.Sprintf("e%d", i), at.AddDate(0, 0, -i), 500))
	}

	res := analyzeMagStripe(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH for stripe fallback at new location", got)
	}
}

func TestTokenNFCNewDevice(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.PaymentSubType = types.SubTypeTokenNFC
	alert.DeviceID = "device_brand_new"

	var history []types.Transaction
	for i := 1; i <= 3; i++ {
		tx := groceryTx(fmt.Sprintf("n%d", i), at.AddDate(0, 0, -i), 500)
		tx.PaymentSubType = types.SubTypeTokenNFC
		tx.DeviceID = "device_usual"
		history = append(history, tx)
	}

	res := analyzeTokenNFC(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskMedium {
		t.Errorf("risk = %v, want MEDIUM for a single new-device factor", got)
	}
	if known := res.Result["device_known"].(bool); known {
		t.Error("device_known = true, want false")
	}
}
