package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// TokenNFCTool checks tokenized NFC transactions (Token NFC, Tap to Pay)
// against the customer's device footprint.
func TokenNFCTool() *checks.Tool {
	return &checks.Tool{
		Name:        "token_nfc",
		Description: "Checks tokenized NFC transactions against the customer's usual devices. New or numerous devices suggest token provisioning fraud.",
		Category:    checks.CategoryPaymentMethod,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeTokenNFC(in), nil
		},
	}
}

func analyzeTokenNFC(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "token_nfc",
		Success:     true,
		Description: "Tokenized NFC device consistency check",
		Category:    string(checks.CategoryPaymentMethod),
	}

	history := relevantHistory(in)
	var nfcTxs []types.Transaction
	devices := map[string]bool{}
	for _, tx := range history {
		if tx.PaymentSubType == types.SubTypeTokenNFC || tx.PaymentSubType == types.SubTypeTapToPay {
			nfcTxs = append(nfcTxs, tx)
			if tx.DeviceID != "" {
				devices[tx.DeviceID] = true
			}
		}
	}

	nfcRate := 0.0
	if len(history) > 0 {
		nfcRate = float64(len(nfcTxs)) / float64(len(history))
	}
	deviceKnown := in.Alert.DeviceID == "" || devices[in.Alert.DeviceID]

	var factors []string
	if nfcRate < 0.05 && len(nfcTxs) >= 2 {
		factors = append(factors, fmt.Sprintf("tokenized payments are rare for this customer (rate %.1f%%)", nfcRate*100))
	}
	if !deviceKnown {
		factors = append(factors, fmt.Sprintf("device %s never seen before", in.Alert.DeviceID))
	}
	if len(devices) > 3 {
		factors = append(factors, fmt.Sprintf("%d distinct devices already provisioned", len(devices)))
	}

	risk := riskFromFactors(len(factors))

	base.Result = map[string]any{
		"nfc_count":     len(nfcTxs),
		"nfc_rate":      round2(nfcRate),
		"known_devices": len(devices),
		"device_known":  deviceKnown,
		"risk_factors":  factors,
		"risk_level":    risk,
	}
	base.Analysis = "tokenized payment consistent with customer devices"
	if len(factors) > 0 {
		base.Analysis = factors[0]
	}
	return base
}
