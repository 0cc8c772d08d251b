package transaction

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fraudlens/internal/types"
)

func TestVelocityThresholdViolation(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	// Three transactions in the last minute plus the alert exceeds the
	// one-minute limit of two.
	history := []types.Transaction{
		groceryTx("t1", at.Add(-50*time.Second), 500),
		groceryTx("t2", at.Add(-40*time.Second), 500),
		groceryTx("t3", at.Add(-30*time.Second), 500),
	}

	res := analyzeVelocity(testInput(alert, history))
	if !res.Success {
		t.Fatal("Success = false")
	}

	overall := res.Result["overall_assessment"].(map[string]any)
	if got := overall["result"].(types.Verdict); got != types.VerdictProbableFraudHigh {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudHigh)
	}
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestVelocityNormalActivity(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 520)

	// One routine transaction per day.
	var history []types.Transaction
	for i := 1; i <= 30; i++ {
		history = append(history, groceryTx(
			fmt.Sprintf("d%d", i),
			at.AddDate(0, 0, -i).Add(-2*time.Hour),
			500,
		))
	}

	res := analyzeVelocity(testInput(alert, history))
	overall := res.Result["overall_assessment"].(map[string]any)
	if got := overall["result"].(types.Verdict); got != types.VerdictNotFraud {
		t.Errorf("verdict = %q, want %q", got, types.VerdictNotFraud)
	}
}

func TestVelocityUnusualHourBurst(t *testing.T) {
	// 02:00 with sub-minute gaps but below every window threshold.
	at := time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	history := []types.Transaction{
		groceryTx("n1", at.Add(-90*time.Second), 400),
	}

	res := analyzeVelocity(testInput(alert, history))
	overall := res.Result["overall_assessment"].(map[string]any)
	got := overall["result"].(types.Verdict)
	if !got.IsFraud() {
		t.Errorf("verdict = %q, want a fraud verdict", got)
	}
}

func TestVelocityImpossibleTravelPattern(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mumLat, mumLon := 19.076, 72.877
	delLat, delLon := 28.613, 77.209

	prev := groceryTx("geo1", at.Add(-3*time.Minute), 500)
	prev.Latitude, prev.Longitude = &mumLat, &mumLon

	alert := alertAt(at, 500)
	alert.Latitude, alert.Longitude = &delLat, &delLon
	alert.Location = "Connaught Place, Delhi"

	res := analyzeVelocity(testInput(alert, []types.Transaction{prev}))
	overall := res.Result["overall_assessment"].(map[string]any)
	if got := overall["result"].(types.Verdict); got == types.VerdictNotFraud {
		t.Errorf("verdict = %q, want a fraud verdict for impossible travel", got)
	}
}

func TestVelocityToolExecute(t *testing.T) {
	tool := VelocityTool()
	if tool.Name != "velocity_analysis" {
		t.Errorf("Name = %q", tool.Name)
	}
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res, err := tool.Execute(context.Background(), testInput(alertAt(at, 500), nil))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Category != "velocity" {
		t.Errorf("Category = %q, want velocity", res.Category)
	}
}
