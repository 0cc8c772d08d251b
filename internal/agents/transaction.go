package agents

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"fraudlens/internal/checks"
	"fraudlens/internal/llm"
	"fraudlens/internal/types"

	"go.uber.org/zap"
)

// TransactionAnalysisAgent runs the transaction checks and turns their
// findings into a verdict.
type TransactionAnalysisAgent struct {
	registry   *checks.Registry
	client     llm.Client
	logger     *zap.Logger
	categories []checks.Category

	// CheckResults from the last Analyze call, for the report.
	mu          sync.Mutex
	lastResults []*checks.ExecuteResult
}

// NewTransactionAnalysisAgent creates the agent. An empty categories slice
// means every registered check runs.
func NewTransactionAnalysisAgent(registry *checks.Registry, client llm.Client, logger *zap.Logger, categories ...checks.Category) *TransactionAnalysisAgent {
	return &TransactionAnalysisAgent{
		registry:   registry,
		client:     client,
		logger:     logger,
		categories: categories,
	}
}

// Name identifies the agent in reports.
func (a *TransactionAnalysisAgent) Name() string { return "transaction_analysis" }

// LastCheckResults returns the check results of the most recent Analyze.
func (a *TransactionAnalysisAgent) LastCheckResults() []*checks.ExecuteResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastResults
}

// Analyze runs the selected checks concurrently, then asks the model for a
// verdict over the combined digest.
func (a *TransactionAnalysisAgent) Analyze(ctx context.Context, in checks.Input) (types.AgentResult, error) {
	tools := a.selectTools()
	results := make([]*checks.ExecuteResult, len(tools))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, tool := range tools {
		g.Go(func() error {
			res, err := a.registry.ExecuteTool(gctx, tool, in)
			if err != nil {
				a.logger.Warn("check failed",
					zap.String("check", tool.Name),
					zap.String("alert_id", in.Alert.AlertID),
					zap.Error(err))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.AgentResult{}, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].CheckName < results[j].CheckName })

	a.mu.Lock()
	a.lastResults = results
	a.mu.Unlock()

	result, err := completeAndParse(ctx, a.client, a.Name(), transactionAnalysisPrompt, digestChecks(in.Alert, results))
	if err != nil {
		if isOffline(err) {
			return synthesizeFromChecks(a.Name(), results), nil
		}
		a.logger.Warn("model analysis failed, synthesizing from checks",
			zap.String("alert_id", in.Alert.AlertID), zap.Error(err))
		return synthesizeFromChecks(a.Name(), results), nil
	}
	return result, nil
}

func (a *TransactionAnalysisAgent) selectTools() []*checks.Tool {
	if len(a.categories) == 0 {
		return a.registry.All()
	}
	var tools []*checks.Tool
	for _, cat := range a.categories {
		tools = append(tools, a.registry.GetByCategory(cat)...)
	}
	return tools
}
