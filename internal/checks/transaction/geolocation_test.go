package transaction

import (
	"testing"
	"time"

	"fraudlens/internal/types"
)

func geoTx(id string, ts time.Time, lat, lon float64) types.Transaction {
	tx := groceryTx(id, ts, 500)
	tx.Latitude = &lat
	tx.Longitude = &lon
	return tx
}

func TestGeoLocationNotApplicableWithoutCoordinates(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res := analyzeGeoLocation(testInput(alertAt(at, 500), nil))
	if applicable := res.Result["applicable"].(bool); applicable {
		t.Error("applicable = true, want false")
	}
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW", got)
	}
}

func TestGeoLocationImpossibleTravel(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Mumbai five minutes before a Delhi alert.
	history := []types.Transaction{geoTx("g1", at.Add(-5*time.Minute), 19.076, 72.877)}

	alert := alertAt(at, 500)
	lat, lon := 28.613, 77.209
	alert.Latitude, alert.Longitude = &lat, &lon

	res := analyzeGeoLocation(testInput(alert, history))
	if impossible := res.Result["impossible_travel"].(bool); !impossible {
		t.Error("impossible_travel = false, want true")
	}
	if got := riskOf(t, res); got != types.RiskHigh {
		t.Errorf("risk = %v, want HIGH", got)
	}
}

func TestGeoLocationFeasibleTravel(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// A kilometer away with a full day in between.
	history := []types.Transaction{geoTx("g1", at.Add(-24*time.Hour), 19.08, 72.88)}

	alert := alertAt(at, 500)
	lat, lon := 19.085, 72.885
	alert.Latitude, alert.Longitude = &lat, &lon

	res := analyzeGeoLocation(testInput(alert, history))
	if got := riskOf(t, res); got != types.RiskLow {
		t.Errorf("risk = %v, want LOW", got)
	}
}

func TestGeoLocationUsesOnlyRecentLegs(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var history []types.Transaction
	for i := 8; i >= 1; i-- {
		history = append(history, geoTx(
			"g"+string(rune('0'+i)),
			at.Add(-time.Duration(i)*time.Hour),
			19.08, 72.88,
		))
	}

	alert := alertAt(at, 500)
	lat, lon := 19.085, 72.885
	alert.Latitude, alert.Longitude = &lat, &lon

	res := analyzeGeoLocation(testInput(alert, history))
	legs := res.Result["legs"].([]travelLeg)
	if len(legs) != 5 {
		t.Errorf("len(legs) = %d, want 5", len(legs))
	}
}
