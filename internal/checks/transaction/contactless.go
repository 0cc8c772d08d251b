package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// ContactlessTool checks a contactless transaction against the customer's
// tap payment habits.
func ContactlessTool() *checks.Tool {
	return &checks.Tool{
		Name:        "contactless",
		Description: "Checks contactless transactions against the customer's tap payment rate, typical amounts and known merchants.",
		Category:    checks.CategoryPaymentMethod,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeContactless(in), nil
		},
	}
}

func analyzeContactless(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "contactless",
		Success:     true,
		Description: "Contactless usage consistency check",
		Category:    string(checks.CategoryPaymentMethod),
	}

	history := relevantHistory(in)
	tapTxs := withPaymentMethod(history, types.MethodContactless)

	if len(tapTxs) == 0 {
		base.Analysis = "customer has no contactless history"
		base.Result = map[string]any{
			"contactless_count": 0,
			"risk_level":        types.RiskHigh,
		}
		return base
	}

	tapRate := float64(len(tapTxs)) / float64(len(history))
	avg := mean(amounts(tapTxs))
	amountTypical := avg > 0 && in.Alert.TransactionAmount >= 0.5*avg && in.Alert.TransactionAmount <= 2*avg

	var merchantHits int
	for _, tx := range tapTxs {
		if tx.MerchantID == in.Alert.MerchantID {
			merchantHits++
		}
	}

	var factors []string
	if tapRate < 0.1 && len(tapTxs) >= 3 {
		factors = append(factors, fmt.Sprintf("contactless is unusual for this customer (rate %.0f%%)", tapRate*100))
	}
	if !amountTypical {
		factors = append(factors, fmt.Sprintf("amount %.2f outside the usual contactless range around %.2f", in.Alert.TransactionAmount, avg))
	}
	if merchantHits == 0 {
		factors = append(factors, "merchant never paid contactless before")
	}

	risk := riskFromFactors(len(factors))

	base.Result = map[string]any{
		"contactless_count": len(tapTxs),
		"contactless_rate":  round2(tapRate),
		"avg_tap_amount":    round2(avg),
		"amount_typical":    amountTypical,
		"merchant_known":    merchantHits > 0,
		"risk_factors":      factors,
		"risk_level":        risk,
	}
	base.Analysis = "contactless transaction consistent with customer habits"
	if len(factors) > 0 {
		base.Analysis = factors[0]
	}
	return base
}
