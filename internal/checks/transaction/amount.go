package transaction

import (
	"context"
	"fmt"
	"math"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// AmountTool profiles the flagged amount against the customer's overall,
// per-merchant and per-category spending distribution.
func AmountTool() *checks.Tool {
	return &checks.Tool{
		Name:        "amount_analysis",
		Description: "Statistical outlier analysis of the transaction amount against the customer's overall, merchant-level and category-level spending distributions.",
		Category:    checks.CategoryAmount,
		Priority:    85,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeAmount(in), nil
		},
	}
}

type amountStats struct {
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Stdev      float64 `json:"stdev"`
	P25        float64 `json:"p25"`
	P75        float64 `json:"p75"`
	P90        float64 `json:"p90"`
	P95        float64 `json:"p95"`
	ZScore     float64 `json:"z_score"`
	Percentile float64 `json:"percentile_rank"`
	DeviationP float64 `json:"deviation_pct"`
}

func statsFor(vals []float64, amount float64) amountStats {
	s := amountStats{
		Count:      len(vals),
		Mean:       round2(mean(vals)),
		Median:     round2(median(vals)),
		Stdev:      round2(stdev(vals)),
		P25:        round2(percentile(vals, 25)),
		P75:        round2(percentile(vals, 75)),
		P90:        round2(percentile(vals, 90)),
		P95:        round2(percentile(vals, 95)),
		Percentile: round2(percentileRank(vals, amount)),
	}
	s.ZScore = round2(zScore(amount, mean(vals), stdev(vals)))
	if m := mean(vals); m > 0 {
		s.DeviationP = round2((amount - m) / m * 100)
	}
	return s
}

func analyzeAmount(in checks.Input) types.CheckResult {
	history := relevantHistory(in)
	amount := in.Alert.TransactionAmount

	if len(history) == 0 {
		return types.CheckResult{
			CheckName:   "amount_analysis",
			Success:     true,
			Description: "Transaction amount outlier analysis",
			Category:    string(checks.CategoryAmount),
			Analysis:    "no transaction history available, amount cannot be profiled",
			Result: map[string]any{
				"history_size": 0,
				"risk_level":   types.RiskMedium,
				"risk_score":   0.5,
			},
		}
	}

	overall := statsFor(amounts(history), amount)

	var merchantTxs, categoryTxs []types.Transaction
	for _, tx := range history {
		if tx.MerchantID == in.Alert.MerchantID {
			merchantTxs = append(merchantTxs, tx)
		}
		if tx.MerchantCategory == in.Alert.MerchantCategory {
			categoryTxs = append(categoryTxs, tx)
		}
	}

	var evidence []string
	var score float64
	addEvidence := func(weight float64, format string, args ...any) {
		score += weight
		evidence = append(evidence, fmt.Sprintf(format, args...))
	}

	absZ := math.Abs(overall.ZScore)
	switch {
	case absZ > 2.5:
		addEvidence(0.8, "amount z-score %.2f is a strong outlier", overall.ZScore)
	case absZ > 1.96:
		addEvidence(0.5, "amount z-score %.2f is a moderate outlier", overall.ZScore)
	}

	switch {
	case overall.Percentile > 95:
		addEvidence(0.4, "amount sits above the 95th percentile of spending")
	case overall.Percentile < 5:
		addEvidence(0.3, "amount sits below the 5th percentile of spending")
	}

	iqr := overall.P75 - overall.P25
	if iqr > 0 {
		upper := overall.P75 + 1.5*iqr
		lower := overall.P25 - 1.5*iqr
		if amount > upper {
			addEvidence(0.6, "amount %.0f exceeds the upper IQR fence %.0f", amount, upper)
		} else if amount < lower {
			addEvidence(0.4, "amount %.0f falls below the lower IQR fence %.0f", amount, lower)
		}
	}

	result := map[string]any{
		"history_size":  len(history),
		"overall_stats": overall,
	}

	if len(merchantTxs) >= 2 {
		ms := statsFor(amounts(merchantTxs), amount)
		result["merchant_stats"] = ms
		if math.Abs(ms.ZScore) > 2.0 {
			addEvidence(0.6, "amount deviates strongly from this merchant's typical spend (z=%.2f)", ms.ZScore)
		}
		if ms.DeviationP > 200 {
			addEvidence(0.4, "amount is %.0f%% above the merchant average", ms.DeviationP)
		}
	}

	if len(categoryTxs) >= 2 {
		cs := statsFor(amounts(categoryTxs), amount)
		result["category_stats"] = cs
		if math.Abs(cs.ZScore) > 2.0 {
			addEvidence(0.5, "amount deviates strongly from the customer's %s category spend (z=%.2f)", in.Alert.MerchantCategory, cs.ZScore)
		}
	}

	outlierLevel := "NONE"
	switch {
	case score >= 0.8:
		outlierLevel = "STRONG"
	case score >= 0.4:
		outlierLevel = "MODERATE"
	case score >= 0.2:
		outlierLevel = "WEAK"
	}

	riskScore := math.Min(score, 1.0)
	risk := types.RiskLow
	switch {
	case riskScore >= 0.7:
		risk = types.RiskHigh
	case riskScore >= 0.4:
		risk = types.RiskMedium
	}
	if outlierLevel == "STRONG" {
		risk = types.RiskHigh
		riskScore = 1.0
	}

	result["outlier_level"] = outlierLevel
	result["outlier_evidence"] = evidence
	result["risk_score"] = round2(riskScore)
	result["risk_level"] = risk

	analysis := fmt.Sprintf("amount %.2f vs mean %.2f (z=%.2f, percentile %.0f): %s outlier", amount, overall.Mean, overall.ZScore, overall.Percentile, outlierLevel)

	return types.CheckResult{
		CheckName:   "amount_analysis",
		Success:     true,
		Result:      result,
		Description: "Transaction amount outlier analysis",
		Category:    string(checks.CategoryAmount),
		Analysis:    analysis,
	}
}
