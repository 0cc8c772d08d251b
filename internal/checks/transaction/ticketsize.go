package transaction

import (
	"context"
	"fmt"
	"math"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// TicketSizeTool compares the flagged amount against the average ticket
// size for the merchant and category.
func TicketSizeTool() *checks.Tool {
	return &checks.Tool{
		Name:        "average_ticket_size",
		Description: "Compares the transaction amount against the customer's average ticket size at this merchant and in this merchant category.",
		Category:    checks.CategoryAmount,
		Priority:    60,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeTicketSize(in), nil
		},
	}
}

func analyzeTicketSize(in checks.Input) types.CheckResult {
	history := relevantHistory(in)
	amount := in.Alert.TransactionAmount

	var merchantTxs, categoryTxs []types.Transaction
	for _, tx := range history {
		if tx.MerchantID == in.Alert.MerchantID {
			merchantTxs = append(merchantTxs, tx)
		}
		if tx.MerchantCategory == in.Alert.MerchantCategory {
			categoryTxs = append(categoryTxs, tx)
		}
	}

	var score float64
	var evidence []string
	result := map[string]any{
		"history_size":   len(history),
		"merchant_count": len(merchantTxs),
		"category_count": len(categoryTxs),
	}

	significance := func(scope string, vals []float64) {
		if len(vals) < 2 {
			return
		}
		ats := mean(vals)
		z := zScore(amount, ats, stdev(vals))
		result[scope+"_ats"] = round2(ats)
		result[scope+"_z_score"] = round2(z)
		result[scope+"_is_typical"] = math.Abs(z) <= 1.5

		absZ := math.Abs(z)
		switch {
		case absZ > 2.5:
			score += 0.8
			evidence = append(evidence, fmt.Sprintf("%s ticket size z-score %.2f is highly unusual", scope, z))
		case absZ > 1.96:
			score += 0.5
			evidence = append(evidence, fmt.Sprintf("%s ticket size z-score %.2f is unusual", scope, z))
		case absZ > 1.0:
			score += 0.3
			evidence = append(evidence, fmt.Sprintf("%s ticket size z-score %.2f is slightly elevated", scope, z))
		}
	}

	significance("merchant", amounts(merchantTxs))
	significance("category", amounts(categoryTxs))

	risk := types.RiskLow
	switch {
	case score >= 0.8:
		risk = types.RiskHigh
	case score >= 0.4:
		risk = types.RiskMedium
	}

	analysis := "transaction amount is typical for this merchant and category"
	if len(evidence) > 0 {
		analysis = evidence[0]
	}
	if len(merchantTxs) < 2 && len(categoryTxs) < 2 {
		analysis = "not enough history to establish an average ticket size"
	}

	result["risk_score"] = round2(math.Min(score, 1.0))
	result["risk_level"] = risk
	result["evidence"] = evidence

	return types.CheckResult{
		CheckName:   "average_ticket_size",
		Success:     true,
		Result:      result,
		Description: "Average ticket size comparison for merchant and category",
		Category:    string(checks.CategoryAmount),
		Analysis:    analysis,
	}
}
