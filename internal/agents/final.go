package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fraudlens/internal/llm"
	"fraudlens/internal/types"

	"go.uber.org/zap"
)

// FinalAnalysisAgent synthesizes agent verdicts into the final disposition.
type FinalAnalysisAgent struct {
	client llm.Client
	logger *zap.Logger
}

// NewFinalAnalysisAgent creates the agent.
func NewFinalAnalysisAgent(client llm.Client, logger *zap.Logger) *FinalAnalysisAgent {
	return &FinalAnalysisAgent{client: client, logger: logger}
}

// Name identifies the agent in reports.
func (a *FinalAnalysisAgent) Name() string { return "final_analysis" }

// Decision is the final disposition for an alert.
type Decision struct {
	Result  types.AgentResult
	Verdict types.Verdict
	Action  types.Action
}

// Decide weighs the agent results and produces the final verdict and
// recommended action.
func (a *FinalAnalysisAgent) Decide(ctx context.Context, alert types.Alert, agentResults []types.AgentResult) (Decision, error) {
	doc := map[string]any{
		"alert":         alert,
		"agent_results": agentResults,
	}
	digest, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Decision{}, fmt.Errorf("final_analysis: marshal digest: %w", err)
	}

	reply, err := a.client.Complete(ctx, finalAnalysisPrompt, string(digest))
	if err != nil {
		if !isOffline(err) {
			a.logger.Warn("final analysis model call failed, synthesizing",
				zap.String("alert_id", alert.AlertID), zap.Error(err))
		}
		return a.synthesize(agentResults), nil
	}

	decision, perr := a.parse(reply)
	if perr != nil {
		a.logger.Warn("unparseable final analysis reply, synthesizing", zap.Error(perr))
		return a.synthesize(agentResults), nil
	}
	return decision, nil
}

func (a *FinalAnalysisAgent) parse(reply string) (Decision, error) {
	raw := llm.ExtractJSON(reply)
	if raw == "" {
		return Decision{}, fmt.Errorf("no JSON object in model reply")
	}

	var parsed struct {
		types.AgentResult
		RecommendedAction string `json:"recommended_action"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Decision{}, err
	}

	result := parsed.AgentResult
	result.AgentName = a.Name()
	result.ClampConfidence()

	action := types.Action(strings.ToUpper(strings.TrimSpace(parsed.RecommendedAction)))
	switch action {
	case types.ActionBlock, types.ActionAllow, types.ActionMonitor, types.ActionInvestigate:
	default:
		return Decision{}, fmt.Errorf("invalid recommended_action %q", parsed.RecommendedAction)
	}

	return Decision{
		Result:  result,
		Verdict: verdictFor(result.AlertIsFalsePositive, action),
		Action:  action,
	}, nil
}

// synthesize derives the disposition from agent agreement when no model is
// available.
func (a *FinalAnalysisAgent) synthesize(agentResults []types.AgentResult) Decision {
	var fraudVotes, clearVotes int
	var fraudConfidence, clearConfidence float64
	for _, r := range agentResults {
		if r.AlertIsFalsePositive {
			clearVotes++
			if r.ConfidenceScore > clearConfidence {
				clearConfidence = r.ConfidenceScore
			}
		} else {
			fraudVotes++
			if r.ConfidenceScore > fraudConfidence {
				fraudConfidence = r.ConfidenceScore
			}
		}
	}

	var action types.Action
	var falsePositive bool
	var confidence float64
	switch {
	case fraudVotes == 0 && clearVotes > 0:
		action = types.ActionAllow
		falsePositive = true
		confidence = clearConfidence
		if confidence < 0.7 {
			action = types.ActionMonitor
		}
	case fraudVotes > 0 && clearVotes == 0:
		falsePositive = false
		confidence = fraudConfidence
		if confidence >= 0.8 {
			action = types.ActionBlock
		} else {
			action = types.ActionInvestigate
		}
	case fraudVotes > clearVotes:
		falsePositive = false
		confidence = fraudConfidence * 0.9
		action = types.ActionInvestigate
	default:
		falsePositive = fraudVotes == 0
		confidence = 0.5
		action = types.ActionInvestigate
	}

	findings := fmt.Sprintf("%d of %d agents flagged the alert", fraudVotes, fraudVotes+clearVotes)

	return Decision{
		Result: types.AgentResult{
			AgentName:            a.Name(),
			AlertIsFalsePositive: falsePositive,
			Findings:             findings,
			DetailedExplanation:  findings + "; disposition derived from agent agreement and confidence",
			ConfidenceScore:      confidence,
		},
		Verdict: verdictFor(falsePositive, action),
		Action:  action,
	}
}

func verdictFor(falsePositive bool, action types.Action) types.Verdict {
	if falsePositive {
		return types.VerdictNotFraud
	}
	switch action {
	case types.ActionBlock:
		return types.VerdictProbableFraudHigh
	case types.ActionMonitor:
		return types.VerdictProbableFraudLess
	default:
		return types.VerdictProbableFraud
	}
}
