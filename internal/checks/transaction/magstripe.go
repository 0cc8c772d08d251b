package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// MagStripeTool checks a magnetic stripe transaction. Mag stripe is the
// weakest card-present mechanism and cloned cards surface here first.
func MagStripeTool() *checks.Tool {
	return &checks.Tool{
		Name:        "mag_stripe",
		Description: "Checks magnetic stripe transactions against the customer's chip usage. Stripe fallbacks for chip-first customers are a cloning signal.",
		Category:    checks.CategoryPaymentMethod,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeMagStripe(in), nil
		},
	}
}

func analyzeMagStripe(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "mag_stripe",
		Success:     true,
		Description: "Magnetic stripe usage check",
		Category:    string(checks.CategoryPaymentMethod),
	}

	history := relevantHistory(in)
	var magCount, emvCount, cardPresentCount, locationHits int
	for _, tx := range history {
		switch tx.PaymentSubType {
		case types.SubTypeMagStripe:
			magCount++
		case types.SubTypeEMVChip:
			emvCount++
		}
		if tx.IsCardPresent() {
			cardPresentCount++
		}
		if tx.Location == in.Alert.Location {
			locationHits++
		}
	}

	magRate := 0.0
	if cardPresentCount > 0 {
		magRate = float64(magCount) / float64(cardPresentCount)
	}

	var factors []string
	if cardPresentCount > 0 && magRate < 0.1 {
		factors = append(factors, fmt.Sprintf("customer is chip-first (stripe rate %.0f%% of card-present)", magRate*100))
	}
	if emvCount > 0 && magCount == 0 {
		factors = append(factors, "first stripe transaction for an EMV-only customer")
	}
	if locationHits == 0 {
		factors = append(factors, "stripe swipe at an unfamiliar location")
	}

	risk := riskFromFactors(len(factors))

	base.Result = map[string]any{
		"mag_stripe_count":   magCount,
		"emv_count":          emvCount,
		"card_present_count": cardPresentCount,
		"mag_stripe_rate":    round2(magRate),
		"location_known":     locationHits > 0,
		"risk_factors":       factors,
		"risk_level":         risk,
	}
	base.Analysis = "stripe usage consistent with customer history"
	if len(factors) > 0 {
		base.Analysis = factors[0]
	}
	return base
}
