package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// TimeDayTool compares the flagged transaction against the customer's
// habitual spending by time-of-day window and weekday/weekend split.
func TimeDayTool() *checks.Tool {
	return &checks.Tool{
		Name:        "time_day_analysis",
		Description: "Checks whether the transaction fits the customer's habitual time-of-day and day-of-week spending, including amount similarity within the matching window.",
		Category:    checks.CategoryTemporal,
		Priority:    80,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeTimeDay(in), nil
		},
	}
}

func timeWindow(hour int) string {
	switch {
	case hour < 6:
		return "night"
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

func dayType(weekday int) string {
	// time.Weekday: Sunday=0, Saturday=6
	if weekday == 0 || weekday == 6 {
		return "weekend"
	}
	return "weekday"
}

func analyzeTimeDay(in checks.Input) types.CheckResult {
	history := relevantHistory(in)
	at := in.Alert.TransactionTimestamp
	amount := in.Alert.TransactionAmount

	window := timeWindow(at.Hour())
	day := dayType(int(at.Weekday()))
	highAmount := amount >= in.Analysis.AbsoluteAmountLimit
	lowAmount := amount <= in.Analysis.AbsoluteAmountLimit*0.10

	// Transactions in the same window and day type.
	var matching []types.Transaction
	for _, tx := range history {
		if timeWindow(tx.Timestamp.Hour()) == window && dayType(int(tx.Timestamp.Weekday())) == day {
			matching = append(matching, tx)
		}
	}

	var similarAmounts int
	for _, tx := range matching {
		if amountsMatch(amount, tx.Amount, in.Analysis.AmountVariability) {
			similarAmounts++
		}
	}
	windowAvg := mean(amounts(matching))

	var verdict types.Verdict
	var rationale string
	switch {
	case len(matching) == 0 && highAmount:
		verdict = types.VerdictProbableFraudHigh
		rationale = fmt.Sprintf("no prior %s %s activity and amount %.0f exceeds the absolute limit", day, window, amount)
	case len(matching) == 0 && lowAmount:
		verdict = types.VerdictProbableFraudLess
		rationale = fmt.Sprintf("no prior %s %s activity, but amount %.0f is small", day, window, amount)
	case len(matching) == 0:
		verdict = types.VerdictProbableFraudLess
		rationale = fmt.Sprintf("no prior %s %s activity for this customer", day, window)
	case similarAmounts > 0:
		verdict = types.VerdictNotFraud
		rationale = fmt.Sprintf("%d similar amounts found in the customer's %s %s history", similarAmounts, day, window)
	case windowAvg > 0 && amount > windowAvg*(1+in.Analysis.AmountVariability) && highAmount:
		verdict = types.VerdictProbableFraudHigh
		rationale = fmt.Sprintf("amount %.0f is high and far above the %s %s average %.0f", amount, day, window, windowAvg)
	default:
		verdict = types.VerdictProbableFraudLess
		rationale = fmt.Sprintf("no similar amounts in %d matching transactions, but amount is unremarkable", len(matching))
	}

	risk := types.RiskLow
	switch verdict {
	case types.VerdictProbableFraudHigh:
		risk = types.RiskHigh
	case types.VerdictProbableFraud, types.VerdictProbableFraudLess:
		risk = types.RiskMedium
	}

	result := map[string]any{
		"time_window":          window,
		"day_type":             day,
		"matching_count":       len(matching),
		"similar_amount_count": similarAmounts,
		"window_avg_amount":    round2(windowAvg),
		"verdict":              verdict,
		"risk_level":           risk,
	}

	return types.CheckResult{
		CheckName:   "time_day_analysis",
		Success:     true,
		Result:      result,
		Description: "Time-of-day and day-of-week habit analysis",
		Category:    string(checks.CategoryTemporal),
		Analysis:    rationale,
	}
}
