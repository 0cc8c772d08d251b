package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// RiskyCountryTool checks the transaction country and currency against the
// configured risky lists, weighted by the customer's historical exposure.
func RiskyCountryTool() *checks.Tool {
	return &checks.Tool{
		Name:        "risky_country_currency",
		Description: "Flags transactions in risk-listed countries or currencies, weighted by how often the customer has transacted there before.",
		Category:    checks.CategoryGeographic,
		Priority:    55,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeRiskyCountry(in), nil
		},
	}
}

func analyzeRiskyCountry(in checks.Input) types.CheckResult {
	history := relevantHistory(in)

	riskyCountry := containsString(in.Analysis.RiskyCountries, in.Alert.Country)
	riskyCurrency := containsString(in.Analysis.RiskyCurrencies, in.Alert.Currency)

	var countryHits, currencyHits int
	for _, tx := range history {
		if tx.Country == in.Alert.Country {
			countryHits++
		}
		if tx.Currency == in.Alert.Currency {
			currencyHits++
		}
	}

	exposure := 0.0
	if len(history) > 0 {
		hits := countryHits
		if riskyCurrency && !riskyCountry {
			hits = currencyHits
		}
		exposure = float64(hits) / float64(len(history))
	}

	risk := types.RiskLow
	rationale := fmt.Sprintf("country %s and currency %s are not risk-listed", in.Alert.Country, in.Alert.Currency)
	if riskyCountry || riskyCurrency {
		if exposure > 0.01 {
			risk = types.RiskHigh
			rationale = fmt.Sprintf("risk-listed corridor with sustained exposure (%.1f%% of history)", exposure*100)
		} else {
			risk = types.RiskMedium
			rationale = "risk-listed country or currency, first exposure for this customer"
		}
	}

	result := map[string]any{
		"country":        in.Alert.Country,
		"currency":       in.Alert.Currency,
		"risky_country":  riskyCountry,
		"risky_currency": riskyCurrency,
		"exposure_rate":  round2(exposure),
		"risk_level":     risk,
	}

	return types.CheckResult{
		CheckName:   "risky_country_currency",
		Success:     true,
		Result:      result,
		Description: "Risky country and currency exposure check",
		Category:    string(checks.CategoryGeographic),
		Analysis:    rationale,
	}
}
