package transaction

import (
	"fmt"
	"testing"
	"time"

	"fraudlens/internal/types"
)

func TestMerchantHistoryEstablished(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.TransactionTimestamp = at

	// Twelve transactions spanning well over ninety days.
	cfg := testInput(alert, nil)
	cfg.Analysis.LookbackDays = 365
	var history []types.Transaction
	for i := 0; i < 12; i++ {
		history = append(history, groceryTx(fmt.Sprintf("m%d", i), at.AddDate(0, 0, -10*(12-i)), 500))
	}
	cfg.History = history

	res := analyzeMerchantHistory(cfg)
	if got := res.Result["relationship"].(string); got != "ESTABLISHED" {
		t.Errorf("relationship = %q, want ESTABLISHED", got)
	}
	if got := riskOf(t, res); got == types.RiskHigh {
		t.Errorf("risk = HIGH, want lower for an established merchant")
	}
}

func TestMerchantHistoryFirstTime(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.MerchantID = "merchant_never_seen"

	history := []types.Transaction{groceryTx("m1", at.AddDate(0, 0, -5), 500)}

	res := analyzeMerchantHistory(testInput(alert, history))
	if got := res.Result["relationship"].(string); got != "FIRST_TIME" {
		t.Errorf("relationship = %q, want FIRST_TIME", got)
	}
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestRiskyMerchantMCCListed(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.MerchantCategoryCode = "7995"
	alert.MerchantCategory = "Gambling"

	res := analyzeRiskyMerchant(testInput(alert, nil))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictProbableFraudHigh {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudHigh)
	}
}

func TestRiskyMerchantKnownWithMatchingAmount(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)

	history := []types.Transaction{
		groceryTx("m1", at.AddDate(0, 0, -7), 495),
		groceryTx("m2", at.AddDate(0, 0, -14), 700),
	}

	res := analyzeRiskyMerchant(testInput(alert, history))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictNotFraud {
		t.Errorf("verdict = %q, want %q", got, types.VerdictNotFraud)
	}
}

func TestRiskyMerchantKnownWithoutMatch(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 9000)

	history := []types.Transaction{
		groceryTx("m1", at.AddDate(0, 0, -7), 500),
	}

	res := analyzeRiskyMerchant(testInput(alert, history))
	if got := res.Result["verdict"].(types.Verdict); got != types.VerdictProbableFraudLess {
		t.Errorf("verdict = %q, want %q", got, types.VerdictProbableFraudLess)
	}
}

func TestRiskyCountryFirstExposure(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.Country = "NG"

	history := []types.Transaction{groceryTx("c1", at.AddDate(0, 0, -7), 500)}

	res := analyzeRiskyCountry(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskMedium {
		t.Errorf("risk = %v, want MEDIUM", got)
	}
}

func TestRiskyCountrySustainedExposure(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := alertAt(at, 500)
	alert.Country = "NG"

	var history []types.Transaction
	for i := 1; i <= 5; i++ {
		tx := groceryTx(fmt.Sprintf("c%d", i), at.AddDate(0, 0, -i), 500)
		tx.Country = "NG"
		history = append(history, tx)
	}

	res := analyzeRiskyCountry(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestRiskyCountryClean(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res := analyzeRiskyCountry(testInput(alertAt(at, 500), nil))
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW", got)
	}
}

func TestFirstTimeAlert(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := testInput(alertAt(at, 500), nil)

	res := analyzeFirstAlert(in)
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW for first alert", got)
	}

	in.PriorAlerts = []types.Alert{{AlertID: "alert_prev"}}
	res = analyzeFirstAlert(in)
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH with prior alerts", got)
	}
}
