package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// CardPresentTool checks a card-present transaction against the customer's
// in-person spending profile.
func CardPresentTool() *checks.Tool {
	return &checks.Tool{
		Name:        "card_present",
		Description: "Checks card-present transactions against the customer's in-person usage rate, known locations and known merchants.",
		Category:    checks.CategoryPaymentMethod,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeCardPresent(in), nil
		},
	}
}

func isCardPresentSubType(sub string) bool {
	switch sub {
	case types.SubTypeMagStripe, types.SubTypeEMVChip, types.SubTypeTokenNFC, types.SubTypeTapToPay:
		return true
	}
	return false
}

func analyzeCardPresent(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "card_present",
		Success:     true,
		Description: "Card-present usage consistency check",
		Category:    string(checks.CategoryPaymentMethod),
	}

	history := relevantHistory(in)
	cpTxs := make([]types.Transaction, 0, len(history))
	var cnpCount, locationHits, merchantHits int
	for _, tx := range history {
		if tx.IsCardPresent() || isCardPresentSubType(tx.PaymentSubType) {
			cpTxs = append(cpTxs, tx)
		}
		if tx.PaymentMethod == types.MethodCardNotPresent {
			cnpCount++
		}
		if tx.Location == in.Alert.Location {
			locationHits++
		}
		if tx.MerchantID == in.Alert.MerchantID {
			merchantHits++
		}
	}

	if len(cpTxs) == 0 {
		base.Analysis = "customer has no card-present history"
		base.Result = map[string]any{
			"card_present_count": 0,
			"risk_level":         types.RiskHigh,
		}
		return base
	}

	cpRate := float64(len(cpTxs)) / float64(len(history))
	locationFreq := 0.0
	if len(history) > 0 {
		locationFreq = float64(locationHits) / float64(len(history))
	}

	var factors []string
	if cpRate < 0.2 && cnpCount > 5 {
		factors = append(factors, fmt.Sprintf("customer is predominantly online (card-present rate %.0f%%)", cpRate*100))
	}
	if locationFreq < 0.1 {
		factors = append(factors, "unfamiliar transaction location")
	}
	if merchantHits == 0 {
		factors = append(factors, "merchant never used before")
	}

	risk := riskFromFactors(len(factors))

	base.Result = map[string]any{
		"card_present_count": len(cpTxs),
		"card_present_rate":  round2(cpRate),
		"location_frequency": round2(locationFreq),
		"merchant_known":     merchantHits > 0,
		"risk_factors":       factors,
		"risk_level":         risk,
	}
	base.Analysis = "card-present transaction consistent with customer profile"
	if len(factors) > 0 {
		base.Analysis = factors[0]
	}
	return base
}
