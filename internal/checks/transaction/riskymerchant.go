package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// RiskyMerchantTool checks the merchant against the configured risky lists
// and the customer's history with it.
func RiskyMerchantTool() *checks.Tool {
	return &checks.Tool{
		Name:        "risky_merchant",
		Description: "Flags merchants in risky category or MCC lists and checks whether the customer has a matching spending history with this merchant.",
		Category:    checks.CategoryMerchant,
		Priority:    75,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeRiskyMerchant(in), nil
		},
	}
}

func analyzeRiskyMerchant(in checks.Input) types.CheckResult {
	history := relevantHistory(in)
	amount := in.Alert.TransactionAmount

	riskyMCC := containsString(in.Analysis.RiskyMCCs, in.Alert.MerchantCategoryCode)
	riskyCategory := containsString(in.Analysis.RiskyMerchantCategories, in.Alert.MerchantCategory)

	var merchantTxs []types.Transaction
	for _, tx := range history {
		if tx.MerchantID == in.Alert.MerchantID {
			merchantTxs = append(merchantTxs, tx)
		}
	}

	var amountMatches int
	for _, tx := range merchantTxs {
		if amountsMatch(amount, tx.Amount, in.Analysis.AmountVariability) {
			amountMatches++
		}
	}

	var verdict types.Verdict
	var risk types.RiskLevel
	var rationale string
	switch {
	case riskyMCC || riskyCategory:
		verdict = types.VerdictProbableFraudHigh
		risk = types.RiskHigh
		if riskyMCC {
			rationale = fmt.Sprintf("merchant category code %s is on the risky MCC list", in.Alert.MerchantCategoryCode)
		} else {
			rationale = fmt.Sprintf("merchant category %q is on the risky category list", in.Alert.MerchantCategory)
		}
	case len(merchantTxs) > 0 && amountMatches > 0:
		verdict = types.VerdictNotFraud
		risk = types.RiskLow
		rationale = fmt.Sprintf("customer has %d prior transactions at this merchant with %d matching amounts", len(merchantTxs), amountMatches)
	case len(merchantTxs) > 0:
		verdict = types.VerdictProbableFraudLess
		risk = types.RiskMedium
		rationale = fmt.Sprintf("merchant is known but amount %.2f does not match prior spending there", amount)
	default:
		verdict = types.VerdictProbableFraudLess
		risk = types.RiskMedium
		rationale = "first transaction at this merchant, category is not risk-listed"
	}

	result := map[string]any{
		"merchant_id":        in.Alert.MerchantID,
		"risky_mcc":          riskyMCC,
		"risky_category":     riskyCategory,
		"merchant_tx_count":  len(merchantTxs),
		"amount_match_count": amountMatches,
		"verdict":            verdict,
		"risk_level":         risk,
	}

	return types.CheckResult{
		CheckName:   "risky_merchant",
		Success:     true,
		Result:      result,
		Description: "Risky merchant list and merchant spending history check",
		Category:    string(checks.CategoryMerchant),
		Analysis:    rationale,
	}
}
