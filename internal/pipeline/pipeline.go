// Package pipeline orchestrates a full alert investigation: loading the
// customer's history, routing to check categories, running the analysis
// agents, and persisting the final report.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fraudlens/internal/agents"
	"fraudlens/internal/checks"
	"fraudlens/internal/checks/transaction"
	"fraudlens/internal/config"
	"fraudlens/internal/llm"
	"fraudlens/internal/store"
	"fraudlens/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline wires the store, the check registry, and the agents together.
// The config is held behind an atomic pointer so hot reloads apply to
// subsequent investigations.
type Pipeline struct {
	cfg      atomic.Pointer[config.Config]
	store    *store.Store
	registry *checks.Registry
	client   llm.Client
	router   *agents.CheckRouter
	timeday  *agents.TimeDayAgent
	history  *agents.AlertHistoryAgent
	final    *agents.FinalAnalysisAgent
	logger   *zap.Logger
}

// New builds a pipeline with the full transaction check registry.
func New(cfg *config.Config, st *store.Store, client llm.Client, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := transaction.NewRegistry()
	p := &Pipeline{
		store:    st,
		registry: registry,
		client:   client,
		router:   agents.NewCheckRouter(client, logger),
		timeday:  agents.NewTimeDayAgent(registry, client, logger),
		history:  agents.NewAlertHistoryAgent(client, logger),
		final:    agents.NewFinalAnalysisAgent(client, logger),
		logger:   logger,
	}
	p.cfg.Store(cfg)
	return p
}

// UpdateConfig swaps the configuration. Investigations started afterwards
// use the new thresholds.
func (p *Pipeline) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	p.cfg.Store(cfg)
	p.logger.Info("pipeline config updated",
		zap.Int("lookback_days", cfg.Analysis.LookbackDays),
		zap.Float64("absolute_amount_limit", cfg.Analysis.AbsoluteAmountLimit))
}

// Registry exposes the check registry, for tool listings.
func (p *Pipeline) Registry() *checks.Registry { return p.registry }

// Store exposes the backing store, for report lookups.
func (p *Pipeline) Store() *store.Store { return p.store }

// Investigate runs the complete investigation for one alert and persists
// both the alert and the resulting report.
func (p *Pipeline) Investigate(ctx context.Context, alert types.Alert) (types.InvestigationReport, error) {
	if err := alert.Validate(); err != nil {
		return types.InvestigationReport{}, err
	}
	started := time.Now().UTC()
	p.logger.Info("investigation started",
		zap.String("alert_id", alert.AlertID),
		zap.String("customer_id", alert.CustomerID),
		zap.Float64("amount", alert.TransactionAmount))

	cfg := p.cfg.Load()
	history, err := p.store.HistoryForCustomer(ctx, alert.CustomerID,
		alert.TransactionTimestamp, cfg.Analysis.Lookback(), alert.TransactionID)
	if err != nil {
		return types.InvestigationReport{}, fmt.Errorf("pipeline: load history: %w", err)
	}
	prior, err := p.store.PriorAlerts(ctx, alert.CustomerID, alert.AlertID)
	if err != nil {
		return types.InvestigationReport{}, fmt.Errorf("pipeline: load prior alerts: %w", err)
	}

	categories, err := p.router.Route(ctx, alert)
	if err != nil {
		return types.InvestigationReport{}, fmt.Errorf("pipeline: route: %w", err)
	}

	in := checks.Input{
		Alert:       alert,
		History:     history,
		PriorAlerts: prior,
		Analysis:    cfg.Analysis,
	}

	txAgent := agents.NewTransactionAnalysisAgent(p.registry, p.client, p.logger, categories...)
	agentList := []agents.Agent{txAgent, p.timeday, p.history}
	agentResults := make([]types.AgentResult, len(agentList))

	g, gctx := errgroup.WithContext(ctx)
	for i, agent := range agentList {
		g.Go(func() error {
			result, err := agent.Analyze(gctx, in)
			if err != nil {
				return fmt.Errorf("pipeline: agent %s: %w", agent.Name(), err)
			}
			agentResults[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.InvestigationReport{}, err
	}

	decision, err := p.final.Decide(ctx, alert, agentResults)
	if err != nil {
		return types.InvestigationReport{}, fmt.Errorf("pipeline: final analysis: %w", err)
	}

	var checkResults []types.CheckResult
	for _, res := range txAgent.LastCheckResults() {
		checkResults = append(checkResults, res.Result)
	}

	report := types.InvestigationReport{
		InvestigationID: "inv_" + uuid.NewString(),
		Alert:           alert,
		AgentResults:    append(agentResults, decision.Result),
		CheckResults:    checkResults,
		Verdict:         decision.Verdict,
		Action:          decision.Action,
		Summary:         decision.Result.Findings,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
	}

	if err := p.store.SaveAlert(ctx, alert); err != nil {
		return types.InvestigationReport{}, fmt.Errorf("pipeline: save alert: %w", err)
	}
	if err := p.store.SaveReport(ctx, report); err != nil {
		return types.InvestigationReport{}, fmt.Errorf("pipeline: save report: %w", err)
	}

	p.logger.Info("investigation finished",
		zap.String("investigation_id", report.InvestigationID),
		zap.String("verdict", string(report.Verdict)),
		zap.String("action", string(report.Action)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}
