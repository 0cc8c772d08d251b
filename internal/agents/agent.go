// Package agents implements the LLM analysis agents that turn check results
// into verdicts. Every agent works in two modes: with a configured model it
// sends a findings digest and parses the structured JSON reply; offline it
// synthesizes the verdict deterministically from the check results.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fraudlens/internal/checks"
	"fraudlens/internal/llm"
	"fraudlens/internal/types"
)

// Agent analyzes one alert and returns a structured verdict.
type Agent interface {
	Name() string
	Analyze(ctx context.Context, in checks.Input) (types.AgentResult, error)
}

// completeAndParse sends the digest to the model and parses the AgentResult
// JSON out of the reply. llm.ErrOffline passes through untouched so callers
// can fall back to synthesis.
func completeAndParse(ctx context.Context, client llm.Client, agentName, systemPrompt, digest string) (types.AgentResult, error) {
	reply, err := client.Complete(ctx, systemPrompt, digest)
	if err != nil {
		return types.AgentResult{}, err
	}

	raw := llm.ExtractJSON(reply)
	if raw == "" {
		return types.AgentResult{}, fmt.Errorf("%s: no JSON object in model reply", agentName)
	}

	var result types.AgentResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return types.AgentResult{}, fmt.Errorf("%s: parse model reply: %w", agentName, err)
	}
	result.AgentName = agentName
	result.ClampConfidence()
	return result, nil
}

// isOffline reports whether the error means no model is configured.
func isOffline(err error) bool {
	return errors.Is(err, llm.ErrOffline)
}

// digestChecks renders check execution results as a compact JSON document
// for the model.
func digestChecks(alert types.Alert, results []*checks.ExecuteResult) string {
	type entry struct {
		Check    string         `json:"check"`
		Success  bool           `json:"success"`
		Analysis string         `json:"analysis,omitempty"`
		Result   map[string]any `json:"result,omitempty"`
		Error    string         `json:"error,omitempty"`
	}

	entries := make([]entry, 0, len(results))
	for _, res := range results {
		e := entry{Check: res.CheckName, Success: res.IsSuccess()}
		if res.Err != nil {
			e.Error = res.Err.Error()
		} else {
			e.Analysis = res.Result.Analysis
			e.Result = res.Result.Result
		}
		entries = append(entries, e)
	}

	doc := map[string]any{
		"alert":         alert,
		"check_results": entries,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Sprintf("alert %s: %d check results (digest marshal failed: %v)", alert.AlertID, len(results), err)
	}
	return string(data)
}

// riskCounts tallies the risk levels the checks reported.
func riskCounts(results []*checks.ExecuteResult) (high, medium, low int) {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		switch res.Result.Result["risk_level"] {
		case types.RiskHigh:
			high++
		case types.RiskMedium:
			medium++
		case types.RiskLow:
			low++
		}
	}
	return
}

// velocityFlagged reports whether the velocity check reached a fraud
// verdict. Velocity bursts and suspicious patterns carry MEDIUM risk, so
// the risk tally alone would clear them.
func velocityFlagged(results []*checks.ExecuteResult) bool {
	for _, res := range results {
		if res.Err != nil || res.CheckName != "velocity_analysis" {
			continue
		}
		assessment, ok := res.Result.Result["overall_assessment"].(map[string]any)
		if !ok {
			continue
		}
		switch v := assessment["result"].(type) {
		case types.Verdict:
			return v.IsFraud()
		case string:
			return types.Verdict(v).IsFraud()
		}
	}
	return false
}

// synthesizeFromChecks builds a deterministic AgentResult from check
// results when no model is available. The alert is cleared only when no
// check reported HIGH risk and velocity reached Not Fraud.
func synthesizeFromChecks(agentName string, results []*checks.ExecuteResult) types.AgentResult {
	high, medium, low := riskCounts(results)
	total := high + medium + low
	velocityHit := velocityFlagged(results)

	var findings []string
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if res.Result.Result["risk_level"] == types.RiskHigh {
			findings = append(findings, res.Result.Analysis)
		}
	}
	if velocityHit && high == 0 {
		findings = append(findings, "velocity analysis reached a fraud verdict")
	}

	falsePositive := high == 0 && !velocityHit
	var confidence float64
	switch {
	case total == 0:
		confidence = 0.3
	case high >= 2:
		confidence = 0.9
	case high == 1:
		confidence = 0.7
	case medium > low:
		confidence = 0.5
	default:
		confidence = 0.8
	}

	summary := fmt.Sprintf("%d checks: %d HIGH, %d MEDIUM, %d LOW risk findings", total, high, medium, low)
	explanation := summary
	if len(findings) > 0 {
		explanation = summary + ". High-risk findings: " + strings.Join(findings, "; ")
	}

	var recommendations []string
	if !falsePositive {
		recommendations = append(recommendations, "review the high-risk findings before releasing the transaction")
	}

	return types.AgentResult{
		AgentName:            agentName,
		AlertIsFalsePositive: falsePositive,
		Findings:             summary,
		DetailedExplanation:  explanation,
		ConfidenceScore:      confidence,
		Recommendations:      recommendations,
	}
}
