package transaction

import (
	"math"
	"testing"
	"time"

	"fraudlens/internal/checks"
	"fraudlens/internal/config"
	"fraudlens/internal/types"
)

// alertAt builds a card-present grocery alert at the given time.
func alertAt(ts time.Time, amount float64) types.Alert {
	return types.Alert{
		AlertID:              "alert_1",
		CustomerID:           "cust_1",
		TransactionID:        "tx_alert",
		MerchantID:           "merchant_cust_1_Grocery_1",
		TransactionAmount:    amount,
		TransactionTimestamp: ts,
		MerchantCategory:     "Grocery",
		MerchantCategoryCode: "5411",
		Location:             "Andheri, Mumbai",
		Country:              "IN",
		Currency:             "INR",
		PaymentMethod:        types.MethodCardPresent,
		PaymentSubType:       types.SubTypeEMVChip,
		PINVerified:          true,
	}
}

// groceryTx builds a routine card-present transaction.
func groceryTx(id string, ts time.Time, amount float64) types.Transaction {
	return types.Transaction{
		TransactionID:        id,
		CustomerID:           "cust_1",
		MerchantID:           "merchant_cust_1_Grocery_1",
		Amount:               amount,
		Timestamp:            ts,
		MerchantCategory:     "Grocery",
		MerchantCategoryCode: "5411",
		Location:             "Andheri, Mumbai",
		Country:              "IN",
		Currency:             "INR",
		PaymentMethod:        types.MethodCardPresent,
		PaymentSubType:       types.SubTypeEMVChip,
		PINVerified:          true,
	}
}

func testInput(alert types.Alert, history []types.Transaction) checks.Input {
	return checks.Input{
		Alert:    alert,
		History:  history,
		Analysis: config.DefaultConfig().Analysis,
	}
}

func riskOf(t *testing.T, res types.CheckResult) types.RiskLevel {
	t.Helper()
	risk, ok := res.Result["risk_level"].(types.RiskLevel)
	if !ok {
		t.Fatalf("result has no risk_level: %v", res.Result)
	}
	return risk
}

func TestTimeWindow(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "night"}, {5, "night"}, {6, "morning"}, {11, "morning"},
		{12, "afternoon"}, {17, "afternoon"}, {18, "evening"}, {23, "evening"},
	}
	for _, tt := range tests {
		if got := timeWindow(tt.hour); got != tt.want {
			t.Errorf("timeWindow(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestDayType(t *testing.T) {
	if got := dayType(int(time.Saturday)); got != "weekend" {
		t.Errorf("Saturday = %q, want weekend", got)
	}
	if got := dayType(int(time.Wednesday)); got != "weekday" {
		t.Errorf("Wednesday = %q, want weekday", got)
	}
}

func TestHaversineKm(t *testing.T) {
	if got := haversineKm(19.0, 72.8, 19.0, 72.8); got != 0 {
		t.Errorf("zero distance = %v, want 0", got)
	}
	// One degree of latitude is roughly 111 km.
	got := haversineKm(19.0, 72.8, 20.0, 72.8)
	if got < 105 || got > 118 {
		t.Errorf("one degree latitude = %.1f km, want ~111", got)
	}
}

func TestStats(t *testing.T) {
	vals := []float64{100, 200, 300, 400, 500}

	if got := mean(vals); got != 300 {
		t.Errorf("mean = %v, want 300", got)
	}
	if got := median(vals); got != 300 {
		t.Errorf("median = %v, want 300", got)
	}
	if got := percentile(vals, 0); got != 100 {
		t.Errorf("p0 = %v, want 100", got)
	}
	if got := percentile(vals, 100); got != 500 {
		t.Errorf("p100 = %v, want 500", got)
	}
	sd := stdev(vals)
	if math.Abs(sd-158.11) > 0.1 {
		t.Errorf("stdev = %v, want ~158.11", sd)
	}
	if got := mean(nil); got != 0 {
		t.Errorf("mean(nil) = %v, want 0", got)
	}
}

func TestPercentileRank(t *testing.T) {
	vals := []float64{10, 20, 30, 40}
	if got := percentileRank(vals, 100); got != 100 {
		t.Errorf("rank(100) = %v, want 100", got)
	}
	if got := percentileRank(vals, 5); got != 0 {
		t.Errorf("rank(5) = %v, want 0", got)
	}
}

func TestAmountsMatch(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{500, 500.005, true}, // exact within a paisa
		{500, 540, true},     // within 10%
		{500, 600, false},
		{500, 0, false},
	}
	for _, tt := range tests {
		if got := amountsMatch(tt.a, tt.b, 0.10); got != tt.want {
			t.Errorf("amountsMatch(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRiskFromFactors(t *testing.T) {
	tests := []struct {
		n    int
		want types.RiskLevel
	}{
		{0, types.RiskLow}, {1, types.RiskMedium}, {2, types.RiskHigh}, {5, types.RiskHigh},
	}
	for _, tt := range tests {
		if got := riskFromFactors(tt.n); got != tt.want {
			t.Errorf("riskFromFactors(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestRelevantHistoryFiltersWindow(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	history := []types.Transaction{
		groceryTx("old", at.AddDate(0, 0, -90), 500),   // outside lookback
		groceryTx("future", at.Add(time.Hour), 500),    // after the alert
		groceryTx("recent", at.AddDate(0, 0, -5), 500), // kept
	}

	got := relevantHistory(testInput(alert, history))
	if len(got) != 1 {
		t.Fatalf("relevantHistory() kept %d, want 1", len(got))
	}
	if got[0].TransactionID != "recent" {
		t.Errorf("kept %q, want recent", got[0].TransactionID)
	}
}
