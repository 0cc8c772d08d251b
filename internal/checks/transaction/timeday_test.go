package transaction

import (
	"fmt"
	"testing"
	"time"

	"fraudlens/internal/types"
)

// 2025-03-01 is a Saturday.
var saturdayMorning = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestTimeDayNoHistoryHighAmount(t *testing.T) {
	alert := alertAt(saturdayMorning, 50000)

	res := analyzeTimeDay(testInput(alert, nil))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictProbableFraudHigh {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudHigh)
	}
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestTimeDayNoHistoryLowAmount(t *testing.T) {
	alert := alertAt(saturdayMorning, 300)

	res := analyzeTimeDay(testInput(alert, nil))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictProbableFraudLess {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudLess)
	}
}

func TestTimeDaySimilarAmountsClear(t *testing.T) {
	alert := alertAt(saturdayMorning, 500)

	// Prior Saturday mornings with amounts inside the 10% tolerance.
	history := []types.Transaction{
		groceryTx("s1", saturdayMorning.AddDate(0, 0, -7).Add(-30*time.Minute), 505),
		groceryTx("s2", saturdayMorning.AddDate(0, 0, -14), 490),
	}

	res := analyzeTimeDay(testInput(alert, history))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictNotFraud {
		t.Errorf("verdict = %q, want %q", got, types.VerdictNotFraud)
	}
	if got := res.Result["similar_amount_count"].(int); got != 2 {
		t.Errorf("similar_amount_count = %d, want 2", got)
	}
}

func TestTimeDayHighVsWindowAverage(t *testing.T) {
	alert := alertAt(saturdayMorning, 25000)

	// Saturday morning history exists but at a far smaller scale.
	var history []types.Transaction
	for i := 1; i <= 4; i++ {
		history = append(history, groceryTx(fmt.Sprintf("s%d", i), saturdayMorning.AddDate(0, 0, -7*i), 500))
	}

	res := analyzeTimeDay(testInput(alert, history))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictProbableFraudHigh {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudHigh)
	}
}

func TestTimeDayDissimilarButModestAmount(t *testing.T) {
	alert := alertAt(saturdayMorning, 900)

	history := []types.Transaction{
		groceryTx("s1", saturdayMorning.AddDate(0, 0, -7), 500),
		groceryTx("s2", saturdayMorning.AddDate(0, 0, -14), 480),
	}

	res := analyzeTimeDay(testInput(alert, history))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictProbableFraudLess {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudLess)
	}
}
