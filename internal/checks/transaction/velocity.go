package transaction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// recentActivityWindow bounds the history slice the burst and pattern
// scenarios look at.
const recentActivityWindow = 24 * time.Hour

// VelocityTool analyzes transaction velocity: window-count violations,
// rapid-fire bursts at unusual hours, and suspicious activity patterns.
func VelocityTool() *checks.Tool {
	return &checks.Tool{
		Name:        "velocity_analysis",
		Description: "Detects abnormal transaction velocity: too many transactions per time window, rapid bursts at unusual hours, and suspicious multi-device, multi-location or escalation patterns.",
		Category:    checks.CategoryVelocity,
		Priority:    90,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeVelocity(in), nil
		},
	}
}

type scenarioFinding struct {
	Scenario  string          `json:"scenario"`
	Triggered bool            `json:"triggered"`
	Severity  types.RiskLevel `json:"severity,omitempty"`
	Details   []string        `json:"details,omitempty"`
}

func analyzeVelocity(in checks.Input) types.CheckResult {
	history := relevantHistory(in)
	alertTx := in.Alert.Transaction()
	at := in.Alert.TransactionTimestamp

	// Timeline of recent activity including the flagged transaction,
	// oldest first.
	recent := make([]types.Transaction, 0, len(history)+1)
	for _, tx := range history {
		if at.Sub(tx.Timestamp) <= recentActivityWindow {
			recent = append(recent, tx)
		}
	}
	recent = append(recent, alertTx)
	sort.Slice(recent, func(i, j int) bool { return recent[i].Timestamp.Before(recent[j].Timestamp) })

	windowCounts := map[string]int{}
	thresholdViolations := checkWindowThresholds(in, history, windowCounts)
	burst := checkUnusualHourBurst(in, recent)
	patterns := checkSuspiciousPatterns(in, history, recent)

	var verdict types.Verdict
	var rationale []string
	switch {
	case thresholdViolations.Triggered:
		verdict = types.VerdictProbableFraudHigh
		rationale = append(rationale, "transaction count exceeded configured velocity thresholds")
		rationale = append(rationale, thresholdViolations.Details...)
	case burst.Triggered || patterns.Triggered:
		verdict = types.VerdictProbableFraud
		if burst.Triggered {
			rationale = append(rationale, "rapid transaction burst during unusual hours")
		}
		if patterns.Triggered {
			rationale = append(rationale, patterns.Details...)
		}
	default:
		verdict = types.VerdictNotFraud
		rationale = append(rationale, "transaction velocity within normal bounds")
	}

	risk := types.RiskLow
	if verdict == types.VerdictProbableFraudHigh {
		risk = types.RiskHigh
	} else if verdict.IsFraud() {
		risk = types.RiskMedium
	}

	result := map[string]any{
		"scenario_analysis": []scenarioFinding{thresholdViolations, burst, patterns},
		"overall_assessment": map[string]any{
			"result":    verdict,
			"rationale": rationale,
		},
		"analysis_metrics": map[string]any{
			"history_size":        len(history),
			"recent_transactions": len(recent) - 1,
			"window_counts":       windowCounts,
		},
		"risk_level": risk,
	}

	return types.CheckResult{
		CheckName:   "velocity_analysis",
		Success:     true,
		Result:      result,
		Description: "Transaction velocity analysis across configured time windows",
		Category:    string(checks.CategoryVelocity),
		Analysis:    fmt.Sprintf("Velocity verdict: %s. %s", verdict, rationale[0]),
	}
}

// checkWindowThresholds counts transactions in each configured window ending
// at the alert timestamp. The flagged transaction counts toward every
// window.
func checkWindowThresholds(in checks.Input, history []types.Transaction, windowCounts map[string]int) scenarioFinding {
	finding := scenarioFinding{Scenario: "velocity_threshold_violations"}
	at := in.Alert.TransactionTimestamp

	windows := make([]int, 0, len(in.Analysis.VelocityThresholds))
	for w := range in.Analysis.VelocityThresholds {
		windows = append(windows, w)
	}
	sort.Ints(windows)

	worst := types.RiskLow
	for _, window := range windows {
		limit := in.Analysis.VelocityThresholds[window]
		cutoff := at.Add(-time.Duration(window) * time.Minute)

		count := 1 // the flagged transaction
		for _, tx := range history {
			if !tx.Timestamp.Before(cutoff) && !tx.Timestamp.After(at) {
				count++
			}
		}
		windowCounts[fmt.Sprintf("%dm", window)] = count

		if count <= limit {
			continue
		}
		finding.Triggered = true
		deviation := float64(count-limit) / float64(limit)
		severity := types.RiskLow
		switch {
		case deviation >= 0.5:
			severity = types.RiskHigh
		case deviation >= 0.25:
			severity = types.RiskMedium
		}
		if severityRank(severity) > severityRank(worst) {
			worst = severity
		}
		finding.Details = append(finding.Details,
			fmt.Sprintf("%d transactions in %dm window exceeds limit %d (deviation %.0f%%)", count, window, limit, deviation*100))
	}
	if finding.Triggered {
		finding.Severity = worst
	}
	return finding
}

// checkUnusualHourBurst flags rapid activity between 23:00 and 06:00.
func checkUnusualHourBurst(in checks.Input, recent []types.Transaction) scenarioFinding {
	finding := scenarioFinding{Scenario: "unusual_hour_burst"}
	at := in.Alert.TransactionTimestamp

	hour := at.Hour()
	unusualHour := hour >= 23 || hour < 6
	if !unusualHour || len(recent) < 2 {
		return finding
	}

	var gapSum float64
	for i := 1; i < len(recent); i++ {
		gapSum += minutesBetween(recent[i-1].Timestamp, recent[i].Timestamp)
	}
	avgGap := gapSum / float64(len(recent)-1)

	lastTenMin := 0
	for _, tx := range recent {
		if at.Sub(tx.Timestamp) <= 10*time.Minute {
			lastTenMin++
		}
	}

	rapid := avgGap < in.Analysis.AvgTimeGapMinutes || lastTenMin >= 2
	if !rapid {
		return finding
	}

	finding.Triggered = true
	finding.Severity = types.RiskMedium
	finding.Details = append(finding.Details,
		fmt.Sprintf("average gap %.1f min across %d recent transactions at %02d:00", avgGap, len(recent), hour))
	if lastTenMin >= 2 {
		finding.Details = append(finding.Details,
			fmt.Sprintf("%d transactions within the last 10 minutes", lastTenMin))
	}
	return finding
}

// checkSuspiciousPatterns scans recent activity for structural fraud
// patterns that velocity counts alone miss.
func checkSuspiciousPatterns(in checks.Input, history, recent []types.Transaction) scenarioFinding {
	finding := scenarioFinding{Scenario: "suspicious_patterns"}

	avgAmount := mean(amounts(history))
	highValue := 2 * avgAmount
	if highValue < 1000 {
		highValue = 1000
	}

	byMerchant := map[string][]types.Transaction{}
	methods := map[string]bool{}
	subTypes := map[string]bool{}
	mccs := map[string]bool{}
	var hasOnline, hasPhysical bool

	for _, tx := range recent {
		byMerchant[tx.MerchantID] = append(byMerchant[tx.MerchantID], tx)
		if tx.PaymentMethod != "" {
			methods[tx.PaymentMethod] = true
		}
		if tx.PaymentSubType != "" {
			subTypes[tx.PaymentSubType] = true
		}
		if tx.MerchantCategoryCode != "" {
			mccs[tx.MerchantCategoryCode] = true
		}
		switch tx.PaymentMethod {
		case types.MethodCardNotPresent:
			hasOnline = true
		case types.MethodCardPresent, types.MethodContactless:
			hasPhysical = true
		}
	}

	addDetail := func(format string, args ...any) {
		finding.Triggered = true
		finding.Details = append(finding.Details, fmt.Sprintf(format, args...))
	}

	// Same merchant hit from multiple devices, locations or IPs.
	for merchant, txs := range byMerchant {
		if len(txs) < 2 {
			continue
		}
		devices := map[string]bool{}
		locations := map[string]bool{}
		ips := map[string]bool{}
		for _, tx := range txs {
			if tx.DeviceID != "" {
				devices[tx.DeviceID] = true
			}
			if tx.Location != "" {
				locations[tx.Location] = true
			}
			if tx.IPAddress != "" {
				ips[tx.IPAddress] = true
			}
		}
		if len(devices) > 1 {
			addDetail("merchant %s hit from %d different devices", merchant, len(devices))
		}
		if len(locations) > 1 {
			addDetail("merchant %s hit from %d different locations", merchant, len(locations))
		}
		if len(ips) > 1 {
			addDetail("merchant %s hit from %d different IP addresses", merchant, len(ips))
		}
	}

	// High-value transactions combined with location or device changes.
	for i := 1; i < len(recent); i++ {
		cur, prev := recent[i], recent[i-1]
		if cur.Amount < highValue {
			continue
		}
		if cur.Location != "" && prev.Location != "" && cur.Location != prev.Location {
			addDetail("high-value transaction %.0f with location change %s -> %s", cur.Amount, prev.Location, cur.Location)
		}
		if cur.DeviceID != "" && prev.DeviceID != "" && cur.DeviceID != prev.DeviceID {
			addDetail("high-value transaction %.0f with device change", cur.Amount)
		}
	}

	// Payment method switching inside the window.
	if len(methods) > 1 || len(subTypes) > 2 {
		addDetail("payment method switching: %d methods, %d sub types", len(methods), len(subTypes))
	}

	// Amount escalation: at least two consecutive jumps of 1.5x or more.
	escalations := 0
	for i := 1; i < len(recent); i++ {
		if recent[i-1].Amount > 0 && recent[i].Amount >= 1.5*recent[i-1].Amount {
			escalations++
			if escalations >= 2 {
				addDetail("amount escalation across %d consecutive transactions", escalations+1)
				break
			}
		} else {
			escalations = 0
		}
	}

	// Cross-channel switching.
	if hasOnline && hasPhysical {
		addDetail("cross-channel switching between online and physical transactions")
	}

	// Merchant category code switching.
	if len(mccs) > 2 {
		addDetail("activity across %d merchant category codes", len(mccs))
	}

	// Impossible travel: over 10 km apart in under 5 minutes.
	for i := 1; i < len(recent); i++ {
		cur, prev := recent[i], recent[i-1]
		if !cur.HasGeo() || !prev.HasGeo() {
			continue
		}
		gap := minutesBetween(prev.Timestamp, cur.Timestamp)
		dist := haversineKm(*prev.Latitude, *prev.Longitude, *cur.Latitude, *cur.Longitude)
		if dist > 10 && gap < 5 {
			addDetail("impossible travel: %.1f km in %.1f minutes", dist, gap)
		}
	}

	if finding.Triggered {
		finding.Severity = types.RiskMedium
		if len(finding.Details) >= 3 {
			finding.Severity = types.RiskHigh
		}
	}
	return finding
}

func severityRank(level types.RiskLevel) int {
	switch level {
	case types.RiskHigh:
		return 3
	case types.RiskMedium:
		return 2
	case types.RiskLow:
		return 1
	default:
		return 0
	}
}
