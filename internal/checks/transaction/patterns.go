package transaction

import (
	"context"
	"fmt"
	"math"
	"time"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// PatternsTool measures how well the flagged transaction matches the
// customer's established spending preferences.
func PatternsTool() *checks.Tool {
	return &checks.Tool{
		Name:        "spending_patterns",
		Description: "Profiles the customer's category, time-of-day, day-of-week and seasonal spending preferences and scores how well the transaction matches them.",
		Category:    checks.CategoryPattern,
		Priority:    70,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzePatterns(in), nil
		},
	}
}

// season buckets follow the Indian climate calendar the sample data was
// generated against.
func season(month time.Month) string {
	switch {
	case month >= 3 && month <= 5:
		return "summer"
	case month >= 6 && month <= 9:
		return "monsoon"
	case month >= 10 && month <= 11:
		return "winter"
	default:
		return "spring"
	}
}

// normalizedEntropy returns the Shannon entropy of the distribution scaled
// to [0, 1].
func normalizedEntropy(counts map[string]int) float64 {
	var total int
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(counts) <= 1 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h / math.Log2(float64(len(counts)))
}

func preferenceRatio(counts map[string]int, key string) float64 {
	var total int
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(counts[key]) / float64(total)
}

func analyzePatterns(in checks.Input) types.CheckResult {
	history := relevantHistory(in)

	if len(history) == 0 {
		return types.CheckResult{
			CheckName:   "spending_patterns",
			Success:     true,
			Description: "Spending pattern consistency analysis",
			Category:    string(checks.CategoryPattern),
			Analysis:    "no history available, spending patterns cannot be established",
			Result: map[string]any{
				"history_size": 0,
				"risk_level":   types.RiskMedium,
				"risk_score":   0.5,
			},
		}
	}

	categories := map[string]int{}
	windows := map[string]int{}
	days := map[string]int{}
	seasons := map[string]int{}
	for _, tx := range history {
		categories[tx.MerchantCategory]++
		windows[timeWindow(tx.Timestamp.Hour())]++
		days[dayType(int(tx.Timestamp.Weekday()))]++
		seasons[season(tx.Timestamp.Month())]++
	}

	// Pattern strength: concentrated habits score high, uniform noise low.
	avgEntropy := (normalizedEntropy(categories) + normalizedEntropy(windows) + normalizedEntropy(days)) / 3
	strength := 1 - avgEntropy

	var diversity float64
	switch n := len(categories); {
	case n == 0:
		diversity = 0
	case n == 1:
		diversity = 0.7
	case n <= 5:
		diversity = 1.0
	default:
		diversity = 0.8
	}

	consistency := strength * diversity
	label := "LOW"
	switch {
	case consistency >= 0.7:
		label = "HIGH"
	case consistency >= 0.4:
		label = "MEDIUM"
	}

	at := in.Alert.TransactionTimestamp
	catRatio := preferenceRatio(categories, in.Alert.MerchantCategory)
	timeRatio := preferenceRatio(windows, timeWindow(at.Hour()))
	dayRatio := preferenceRatio(days, dayType(int(at.Weekday())))
	match := 0.5*catRatio + 0.3*timeRatio + 0.2*dayRatio

	matchLevel := "LOW"
	switch {
	case match >= 0.3:
		matchLevel = "HIGH"
	case match >= 0.15:
		matchLevel = "MEDIUM"
	}

	riskScore := (1-consistency)*0.6 + (1-match)*0.4
	risk := types.RiskLow
	switch {
	case riskScore >= 0.7:
		risk = types.RiskHigh
	case riskScore >= 0.4:
		risk = types.RiskMedium
	}

	result := map[string]any{
		"history_size":        len(history),
		"category_counts":     categories,
		"time_window_counts":  windows,
		"day_type_counts":     days,
		"season_counts":       seasons,
		"pattern_strength":    round2(strength),
		"diversity_factor":    diversity,
		"consistency_score":   round2(consistency),
		"consistency_level":   label,
		"category_preference": round2(catRatio),
		"time_preference":     round2(timeRatio),
		"day_preference":      round2(dayRatio),
		"match_score":         round2(match),
		"match_level":         matchLevel,
		"risk_score":          round2(riskScore),
		"risk_level":          risk,
	}

	analysis := fmt.Sprintf("pattern consistency %s (%.2f), transaction match %s (%.2f)", label, consistency, matchLevel, match)

	return types.CheckResult{
		CheckName:   "spending_patterns",
		Success:     true,
		Result:      result,
		Description: "Spending pattern consistency analysis",
		Category:    string(checks.CategoryPattern),
		Analysis:    analysis,
	}
}
