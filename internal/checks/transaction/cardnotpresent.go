package transaction

import (
	"context"
	"fmt"
	"strings"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// CardNotPresentTool checks an online transaction against the customer's
// card-not-present footprint, including the IP subnet.
func CardNotPresentTool() *checks.Tool {
	return &checks.Tool{
		Name:        "card_not_present",
		Description: "Checks online transactions against the customer's card-not-present usage, known online merchants and originating IP subnets.",
		Category:    checks.CategoryPaymentMethod,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeCardNotPresent(in), nil
		},
	}
}

// sameSubnet24 compares the first three octets of two IPv4 addresses.
func sameSubnet24(a, b string) bool {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	if len(pa) != 4 || len(pb) != 4 {
		return false
	}
	return pa[0] == pb[0] && pa[1] == pb[1] && pa[2] == pb[2]
}

func analyzeCardNotPresent(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "card_not_present",
		Success:     true,
		Description: "Card-not-present usage consistency check",
		Category:    string(checks.CategoryPaymentMethod),
	}

	history := relevantHistory(in)
	cnpTxs := withPaymentMethod(history, types.MethodCardNotPresent)

	if len(cnpTxs) == 0 {
		base.Analysis = "customer has no card-not-present history"
		base.Result = map[string]any{
			"cnp_count":  0,
			"risk_level": types.RiskHigh,
		}
		return base
	}

	var merchantHits, subnetHits int
	for _, tx := range cnpTxs {
		if tx.MerchantID == in.Alert.MerchantID {
			merchantHits++
		}
		if in.Alert.IPAddress != "" && tx.IPAddress != "" && sameSubnet24(in.Alert.IPAddress, tx.IPAddress) {
			subnetHits++
		}
	}
	cnpRate := float64(len(cnpTxs)) / float64(len(history))

	var factors []string
	if cnpRate < 0.1 {
		factors = append(factors, fmt.Sprintf("customer rarely shops online (CNP rate %.0f%%)", cnpRate*100))
	}
	if merchantHits == 0 {
		factors = append(factors, "online merchant never used before")
	}
	if in.Alert.IPAddress != "" && subnetHits == 0 {
		factors = append(factors, "IP address outside every previously seen /24 subnet")
	}

	risk := riskFromFactors(len(factors))

	base.Result = map[string]any{
		"cnp_count":      len(cnpTxs),
		"cnp_rate":       round2(cnpRate),
		"merchant_known": merchantHits > 0,
		"subnet_matches": subnetHits,
		"risk_factors":   factors,
		"risk_level":     risk,
	}
	base.Analysis = "online transaction consistent with customer profile"
	if len(factors) > 0 {
		base.Analysis = factors[0]
	}
	return base
}
