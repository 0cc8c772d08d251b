package transaction

import (
	"context"
	"fmt"
	"math"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// MerchantHistoryTool scores how familiar the customer is with the alert's
// merchant.
func MerchantHistoryTool() *checks.Tool {
	return &checks.Tool{
		Name:        "previous_merchant_history",
		Description: "Measures the customer's familiarity with this merchant: transaction count, relationship span and recency.",
		Category:    checks.CategoryMerchant,
		Priority:    65,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeMerchantHistory(in), nil
		},
	}
}

func analyzeMerchantHistory(in checks.Input) types.CheckResult {
	history := relevantHistory(in)
	at := in.Alert.TransactionTimestamp

	var merchantTxs []types.Transaction
	for _, tx := range history {
		if tx.MerchantID == in.Alert.MerchantID {
			merchantTxs = append(merchantTxs, tx)
		}
	}

	n := len(merchantTxs)
	var spanDays, recencyDays, monthlyFrequency float64
	if n > 0 {
		first := merchantTxs[0].Timestamp
		last := merchantTxs[n-1].Timestamp
		spanDays = last.Sub(first).Hours() / 24
		recencyDays = at.Sub(last).Hours() / 24
		monthlyFrequency = float64(n) / math.Max(spanDays, 1) * 30
	}

	status := "FIRST_TIME"
	switch {
	case n >= 10 && spanDays >= 90:
		status = "ESTABLISHED"
	case n >= 2:
		status = "MINIMAL"
	case n == 1:
		status = "MINIMAL"
	}

	familiarity := 0.4*math.Min(float64(n)/10, 1) +
		0.3*math.Min(spanDays/365, 1) +
		0.3*math.Max(0, 1-recencyDays/365)
	if n == 0 {
		familiarity = 0
	}

	riskScore := 1 - familiarity
	risk := types.RiskLow
	switch {
	case riskScore >= 0.7:
		risk = types.RiskHigh
	case riskScore >= 0.4:
		risk = types.RiskMedium
	}
	if status == "FIRST_TIME" {
		risk = types.RiskHigh
	}

	result := map[string]any{
		"merchant_id":        in.Alert.MerchantID,
		"transaction_count":  n,
		"relationship_days":  round2(spanDays),
		"recency_days":       round2(recencyDays),
		"monthly_frequency":  round2(monthlyFrequency),
		"relationship":       status,
		"familiarity_score":  round2(familiarity),
		"risk_score":         round2(riskScore),
		"risk_level":         risk,
	}

	analysis := fmt.Sprintf("%s merchant relationship: %d transactions over %.0f days", status, n, spanDays)

	return types.CheckResult{
		CheckName:   "previous_merchant_history",
		Success:     true,
		Result:      result,
		Description: "Customer familiarity with the alert merchant",
		Category:    string(checks.CategoryMerchant),
		Analysis:    analysis,
	}
}
