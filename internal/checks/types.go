// Package checks provides the registry of transaction analysis checks.
//
// Each check is a standalone tool that inspects an alert against the
// customer's transaction history and returns a structured CheckResult. The
// analysis agents select checks by category and feed the combined findings
// to the model.
package checks

import (
	"context"

	"fraudlens/internal/config"
	"fraudlens/internal/types"
)

// Category classifies checks for agent-driven selection.
type Category string

const (
	CategoryVelocity      Category = "velocity"
	CategoryAmount        Category = "amount"
	CategoryPattern       Category = "pattern"
	CategoryPaymentMethod Category = "payment_method"
	CategoryGeographic    Category = "geographic"
	CategoryMerchant      Category = "merchant"
	CategoryHistory       Category = "history"
	CategoryTemporal      Category = "temporal"
)

// Input carries everything a check needs to analyze one alert.
type Input struct {
	// Alert is the flagged transaction under investigation.
	Alert types.Alert

	// History is the customer's prior transactions, oldest first. The
	// flagged transaction itself must not be included.
	History []types.Transaction

	// PriorAlerts are earlier alerts raised for the same customer.
	PriorAlerts []types.Alert

	// Analysis carries the tunable thresholds.
	Analysis config.AnalysisConfig
}

// ExecuteFunc is the signature for check execution.
type ExecuteFunc func(ctx context.Context, in Input) (types.CheckResult, error)

// Tool defines a registered analysis check.
type Tool struct {
	// Name is the unique identifier for the check.
	Name string

	// Description explains what the check looks for. Fed to the model as
	// part of the findings digest.
	Description string

	// Category classifies the check for agent selection.
	Category Category

	// Execute runs the check.
	Execute ExecuteFunc

	// Priority orders checks within a category (default 50, higher first).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrCheckNameEmpty
	}
	if t.Execute == nil {
		return ErrCheckExecuteNil
	}
	return nil
}

// ExecuteResult wraps the result of a check execution with metadata.
type ExecuteResult struct {
	CheckName  string
	Result     types.CheckResult
	Err        error
	DurationMs int64
}

// IsSuccess returns true if the check executed without error.
func (r *ExecuteResult) IsSuccess() bool {
	return r.Err == nil
}
