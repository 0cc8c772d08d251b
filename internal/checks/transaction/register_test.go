package transaction

import (
	"context"
	"testing"
	"time"

	"fraudlens/internal/checks"
)

func TestNewRegistryHasAllChecks(t *testing.T) {
	r := NewRegistry()

	if got := r.Count(); got != 16 {
		t.Errorf("Count() = %d, want 16", got)
	}

	wantNames := []string{
		"amount_analysis", "average_ticket_size", "card_not_present",
		"card_present", "contactless", "first_time_alert", "geo_location",
		"mag_stripe", "pin_verified", "previous_merchant_history",
		"risky_country_currency", "risky_merchant", "spending_patterns",
		"time_day_analysis", "token_nfc", "velocity_analysis",
	}
	got := r.Names()
	if len(got) != len(wantNames) {
		t.Fatalf("Names() = %v", got)
	}
	for i, name := range wantNames {
		if got[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], name)
		}
	}
}

func TestRegistryCategories(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		category checks.Category
		want     int
	}{
		{checks.CategoryVelocity, 1},
		{checks.CategoryAmount, 2},
		{checks.CategoryPaymentMethod, 6},
		{checks.CategoryGeographic, 2},
		{checks.CategoryMerchant, 2},
		{checks.CategoryTemporal, 1},
		{checks.CategoryPattern, 1},
		{checks.CategoryHistory, 1},
	}
	for _, tt := range tests {
		if got := len(r.GetByCategory(tt.category)); got != tt.want {
			t.Errorf("GetByCategory(%s) = %d tools, want %d", tt.category, got, tt.want)
		}
	}
}

func TestExecuteAllChecksSucceed(t *testing.T) {
	r := NewRegistry()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := testInput(alertAt(at, 500), variedHistory(at, 30))

	results := r.ExecuteAll(context.Background(), in)
	if len(results) != 16 {
		t.Fatalf("ExecuteAll() returned %d results, want 16", len(results))
	}
	for _, res := range results {
		if !res.IsSuccess() {
			t.Errorf("check %s failed: %v", res.CheckName, res.Err)
		}
		if res.Result.CheckName == "" {
			t.Errorf("check %s returned an empty result name", res.CheckName)
		}
	}
}
