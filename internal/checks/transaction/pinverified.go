package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// PINVerifiedTool weighs PIN verification against the customer's usual
// verification, location, amount and merchant behavior.
func PINVerifiedTool() *checks.Tool {
	return &checks.Tool{
		Name:        "pin_verified",
		Description: "For PIN-verified transactions, checks whether the verification fits the customer's usual PIN usage, location, amount range and merchants.",
		Category:    checks.CategoryPaymentMethod,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzePINVerified(in), nil
		},
	}
}

func analyzePINVerified(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "pin_verified",
		Success:     true,
		Description: "PIN verification consistency check",
		Category:    string(checks.CategoryPaymentMethod),
	}

	if !in.Alert.PINVerified {
		base.Analysis = "transaction was not PIN verified, check not applicable"
		base.Result = map[string]any{
			"pin_verified": false,
			"risk_level":   types.RiskLow,
		}
		return base
	}

	history := relevantHistory(in)
	var pinCount, locationHits, merchantHits int
	for _, tx := range history {
		if tx.PINVerified {
			pinCount++
		}
		if tx.Location == in.Alert.Location {
			locationHits++
		}
		if tx.MerchantID == in.Alert.MerchantID {
			merchantHits++
		}
	}

	pinRate := 0.0
	if len(history) > 0 {
		pinRate = float64(pinCount) / float64(len(history))
	}
	avg := mean(amounts(history))
	amountTypical := avg > 0 && in.Alert.TransactionAmount >= 0.5*avg && in.Alert.TransactionAmount <= 2*avg

	var factors []string
	if len(history) > 0 && pinRate < 0.1 {
		factors = append(factors, fmt.Sprintf("customer rarely uses PIN (%.0f%% of history)", pinRate*100))
	}
	if locationHits == 0 {
		factors = append(factors, "PIN used at a location the customer has never transacted from")
	}
	if !amountTypical && avg > 0 {
		factors = append(factors, "amount outside the customer's usual 0.5x-2x range")
	}
	if merchantHits == 0 {
		factors = append(factors, "first PIN transaction at this merchant")
	}
	risk := riskFromFactors(len(factors))

	base.Result = map[string]any{
		"pin_verified":   true,
		"pin_usage_rate": round2(pinRate),
		"amount_typical": amountTypical,
		"risk_factors":   factors,
		"risk_level":     risk,
	}
	base.Analysis = "PIN verification consistent with customer behavior"
	if len(factors) > 0 {
		base.Analysis = factors[0]
	}
	return base
}
