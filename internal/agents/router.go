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

// allCategories is the routing universe.
var allCategories = []checks.Category{
	checks.CategoryVelocity,
	checks.CategoryAmount,
	checks.CategoryPattern,
	checks.CategoryPaymentMethod,
	checks.CategoryGeographic,
	checks.CategoryMerchant,
	checks.CategoryHistory,
	checks.CategoryTemporal,
}

// CheckRouter is the triage step: it decides which check categories an
// alert warrants. Offline it routes to every category.
type CheckRouter struct {
	client llm.Client
	logger *zap.Logger
}

// NewCheckRouter creates the router.
func NewCheckRouter(client llm.Client, logger *zap.Logger) *CheckRouter {
	return &CheckRouter{client: client, logger: logger}
}

// Route returns the check categories to run for the alert.
func (r *CheckRouter) Route(ctx context.Context, alert types.Alert) ([]checks.Category, error) {
	digest, err := json.MarshalIndent(alert, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("router: marshal alert: %w", err)
	}

	reply, err := r.client.Complete(ctx, routingPrompt, string(digest))
	if err != nil {
		if isOffline(err) {
			return allCategories, nil
		}
		r.logger.Warn("routing failed, running all categories",
			zap.String("alert_id", alert.AlertID), zap.Error(err))
		return allCategories, nil
	}

	var parsed struct {
		Categories []string `json:"categories"`
		Rationale  string   `json:"rationale"`
	}
	raw := llm.ExtractJSON(reply)
	if raw == "" {
		return allCategories, nil
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		r.logger.Warn("unparseable routing reply, running all categories", zap.Error(err))
		return allCategories, nil
	}

	var out []checks.Category
	for _, name := range parsed.Categories {
		for _, known := range allCategories {
			if string(known) == name {
				out = append(out, known)
				break
			}
		}
	}
	if len(out) == 0 {
		return allCategories, nil
	}
	r.logger.Debug("routed alert",
		zap.String("alert_id", alert.AlertID),
		zap.Int("categories", len(out)),
		zap.String("rationale", parsed.Rationale))
	return out, nil
}
