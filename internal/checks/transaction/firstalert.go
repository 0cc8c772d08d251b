package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// FirstAlertTool checks whether this is the customer's first fraud alert.
func FirstAlertTool() *checks.Tool {
	return &checks.Tool{
		Name:        "first_time_alert",
		Description: "Checks whether the customer has been alerted before. Repeat alerts raise the risk.",
		Category:    checks.CategoryHistory,
		Priority:    50,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeFirstAlert(in), nil
		},
	}
}

func analyzeFirstAlert(in checks.Input) types.CheckResult {
	prior := 0
	for _, a := range in.PriorAlerts {
		if a.AlertID != in.Alert.AlertID {
			prior++
		}
	}

	risk := types.RiskLow
	analysis := "first alert for this customer"
	if prior > 0 {
		risk = types.RiskHigh
		analysis = fmt.Sprintf("customer has %d prior alerts", prior)
	}

	result := map[string]any{
		"prior_alert_count": prior,
		"first_time":        prior == 0,
		"risk_level":        risk,
	}

	return types.CheckResult{
		CheckName:   "first_time_alert",
		Success:     true,
		Result:      result,
		Description: "Prior alert history check",
		Category:    string(checks.CategoryHistory),
		Analysis:    analysis,
	}
}
