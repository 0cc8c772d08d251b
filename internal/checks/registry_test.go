package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"fraudlens/internal/types"
)

func testAlert() types.Alert {
	return types.Alert{
		AlertID:              "alert_test",
		CustomerID:           "cust_test",
		TransactionID:        "tx_test",
		TransactionAmount:    100,
		TransactionTimestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func okTool(name string, category Category) *Tool {
	return &Tool{
		Name:        name,
		Description: "test check",
		Category:    category,
		Execute: func(ctx context.Context, in Input) (types.CheckResult, error) {
			return types.CheckResult{CheckName: name, Success: true}, nil
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(okTool("velocity", CategoryVelocity)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := r.Get("velocity"); got == nil {
		t.Fatal("Get() = nil, want tool")
	}
	if !r.Has("velocity") {
		t.Error("Has() = false, want true")
	}
	if r.Has("unknown") {
		t.Error("Has(unknown) = true, want false")
	}
	if got := r.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		tool *Tool
		want error
	}{
		{"empty name", &Tool{Execute: okTool("x", CategoryAmount).Execute}, ErrCheckNameEmpty},
		{"nil execute", &Tool{Name: "x"}, ErrCheckExecuteNil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.tool)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(okTool("dup", CategoryAmount)); err != nil {
		t.Fatal(err)
	}
	err := r.Register(okTool("dup", CategoryAmount))
	if !errors.Is(err, ErrCheckAlreadyRegistered) {
		t.Errorf("Register() error = %v, want ErrCheckAlreadyRegistered", err)
	}
}

func TestGetByCategoryPriorityOrder(t *testing.T) {
	r := NewRegistry()

	low := okTool("low", CategoryVelocity)
	low.Priority = 10
	high := okTool("high", CategoryVelocity)
	high.Priority = 90
	other := okTool("other", CategoryAmount)

	for _, tool := range []*Tool{low, high, other} {
		if err := r.Register(tool); err != nil {
			t.Fatal(err)
		}
	}

	got := r.GetByCategory(CategoryVelocity)
	if len(got) != 2 {
		t.Fatalf("GetByCategory() returned %d tools, want 2", len(got))
	}
	if got[0].Name != "high" || got[1].Name != "low" {
		t.Errorf("order = [%s %s], want [high low]", got[0].Name, got[1].Name)
	}
}

func TestExecuteNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "missing", Input{Alert: testAlert()})
	if !errors.Is(err, ErrCheckNotFound) {
		t.Errorf("Execute() error = %v, want ErrCheckNotFound", err)
	}
}

func TestExecuteValidatesAlert(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(okTool("check", CategoryAmount)); err != nil {
		t.Fatal(err)
	}

	res, err := r.Execute(context.Background(), "check", Input{})
	if err == nil {
		t.Fatal("Execute() error = nil, want validation error")
	}
	if res == nil || res.IsSuccess() {
		t.Error("result should carry the validation failure")
	}
}

func TestExecuteAll(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(okTool("b_check", CategoryAmount))
	r.MustRegister(okTool("a_check", CategoryVelocity))
	failing := &Tool{
		Name:     "c_fail",
		Category: CategoryPattern,
		Execute: func(ctx context.Context, in Input) (types.CheckResult, error) {
			return types.CheckResult{}, errors.New("boom")
		},
	}
	r.MustRegister(failing)

	results := r.ExecuteAll(context.Background(), Input{Alert: testAlert()})
	if len(results) != 3 {
		t.Fatalf("ExecuteAll() returned %d results, want 3", len(results))
	}
	// Name order: a_check, b_check, c_fail
	if results[0].CheckName != "a_check" {
		t.Errorf("results[0] = %s, want a_check", results[0].CheckName)
	}
	if results[2].IsSuccess() {
		t.Error("failing check reported success")
	}

	var failures int
	for _, res := range results {
		if !res.IsSuccess() {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestExecuteAllHonorsContext(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(okTool("one", CategoryAmount))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := r.ExecuteAll(ctx, Input{Alert: testAlert()})
	if len(results) != 0 {
		t.Errorf("ExecuteAll() with cancelled ctx returned %d results, want 0", len(results))
	}
}
