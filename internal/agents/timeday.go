package agents

import (
	"context"

	"fraudlens/internal/checks"
	"fraudlens/internal/llm"
	"fraudlens/internal/types"

	"go.uber.org/zap"
)

// TimeDayAgent wraps the temporal habit check with its own analysis prompt.
type TimeDayAgent struct {
	registry *checks.Registry
	client   llm.Client
	logger   *zap.Logger
}

// NewTimeDayAgent creates the agent.
func NewTimeDayAgent(registry *checks.Registry, client llm.Client, logger *zap.Logger) *TimeDayAgent {
	return &TimeDayAgent{registry: registry, client: client, logger: logger}
}

// Name identifies the agent in reports.
func (a *TimeDayAgent) Name() string { return "time_day_analysis" }

// Analyze runs the temporal checks and asks the model to judge the habit
// fit.
func (a *TimeDayAgent) Analyze(ctx context.Context, in checks.Input) (types.AgentResult, error) {
	var results []*checks.ExecuteResult
	for _, tool := range a.registry.GetByCategory(checks.CategoryTemporal) {
		res, err := a.registry.ExecuteTool(ctx, tool, in)
		if err != nil {
			a.logger.Warn("temporal check failed",
				zap.String("check", tool.Name),
				zap.String("alert_id", in.Alert.AlertID),
				zap.Error(err))
		}
		results = append(results, res)
	}

	result, err := completeAndParse(ctx, a.client, a.Name(), timeDayAnalysisPrompt, digestChecks(in.Alert, results))
	if err != nil {
		if !isOffline(err) {
			a.logger.Warn("model analysis failed, synthesizing from checks",
				zap.String("alert_id", in.Alert.AlertID), zap.Error(err))
		}
		return synthesizeFromChecks(a.Name(), results), nil
	}
	return result, nil
}
