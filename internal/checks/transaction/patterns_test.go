package transaction

import (
	"testing"
	"time"

	"fraudlens/internal/types"
)

func TestSeason(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.April, "summer"},
		{time.July, "monsoon"},
		{time.October, "winter"},
		{time.January, "spring"},
		{time.December, "spring"},
	}
	for _, tt := range tests {
		if got := season(tt.month); got != tt.want {
			t.Errorf("season(%v) = %q, want %q", tt.month, got, tt.want)
		}
	}
}

func TestNormalizedEntropy(t *testing.T) {
	if got := normalizedEntropy(map[string]int{"a": 10}); got != 0 {
		t.Errorf("single bucket entropy = %v, want 0", got)
	}
	got := normalizedEntropy(map[string]int{"a": 10, "b": 10})
	if got < 0.99 || got > 1.01 {
		t.Errorf("uniform entropy = %v, want 1", got)
	}
}

func TestPatternsNoHistory(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res := analyzePatterns(testInput(alertAt(at, 500), nil))
	if got := riskOf(t, res); got != types.RiskMedium {
		t.Errorf("risk = %v, want MEDIUM without history", got)
	}
}

func TestPatternsConsistentShopper(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	// Groceries every Saturday morning builds strong, matching habits.
	var history []types.Transaction
	for i := 1; i <= 8; i++ {
		history = append(history, groceryTx("w"+string(rune('0'+i)), at.AddDate(0, 0, -7*i), 500))
	}

	res := analyzePatterns(testInput(alert, history))
	if got := res.Result["match_level"].(string); got != "HIGH" {
		t.Errorf("match_level = %q, want HIGH", got)
	}
	if got := riskOf(t, res); got == types.RiskHigh {
		t.Error("risk = HIGH, want lower for a matching habitual purchase")
	}
}

func TestPatternsMismatchedPurchase(t *testing.T) {
	// A Tuesday night electronics purchase against Saturday morning
	// grocery habits misses on category, time window and day type.
	at := time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC)
	alert := alertAt(at, 50000)
	alert.MerchantCategory = "Electronics"

	saturday := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var history []types.Transaction
	for i := 1; i <= 8; i++ {
		history = append(history, groceryTx("w"+string(rune('0'+i)), saturday.AddDate(0, 0, -7*i), 500))
	}

	res := analyzePatterns(testInput(alert, history))
	if got := res.Result["match_level"].(string); got != "LOW" {
		t.Errorf("match_level = %q, want LOW", got)
	}
	match := res.Result["match_score"].(float64)
	if match != 0 {
		t.Errorf("match_score = %v, want 0", match)
	}
}
