package transaction

import (
	"context"
	"fmt"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

// assumedTravelSpeedKmh is the ground speed used to judge whether the
// customer could have moved between two terminals in time.
const assumedTravelSpeedKmh = 60.0

// GeoLocationTool checks travel feasibility against the customer's recent
// card-present locations.
func GeoLocationTool() *checks.Tool {
	return &checks.Tool{
		Name:        "geo_location",
		Description: "Checks whether the customer could physically have reached the transaction location given their recent card-present transactions.",
		Category:    checks.CategoryGeographic,
		Priority:    70,
		Execute: func(ctx context.Context, in checks.Input) (types.CheckResult, error) {
			return analyzeGeoLocation(in), nil
		},
	}
}

type travelLeg struct {
	TransactionID string  `json:"transaction_id"`
	DistanceKm    float64 `json:"distance_km"`
	GapMinutes    float64 `json:"gap_minutes"`
	MinTravelMin  float64 `json:"min_travel_minutes"`
	Feasibility   float64 `json:"feasibility"`
}

func analyzeGeoLocation(in checks.Input) types.CheckResult {
	base := types.CheckResult{
		CheckName:   "geo_location",
		Success:     true,
		Description: "Travel feasibility check against recent card-present locations",
		Category:    string(checks.CategoryGeographic),
	}

	if !in.Alert.Transaction().HasGeo() {
		base.Analysis = "alert carries no coordinates, travel feasibility not applicable"
		base.Result = map[string]any{"risk_level": types.RiskLow, "applicable": false}
		return base
	}

	history := relevantHistory(in)
	var geoTxs []types.Transaction
	for _, tx := range history {
		if tx.IsCardPresent() && tx.HasGeo() {
			geoTxs = append(geoTxs, tx)
		}
	}
	// Only the most recent card-present locations matter for travel.
	if len(geoTxs) > 5 {
		geoTxs = geoTxs[len(geoTxs)-5:]
	}

	if len(geoTxs) == 0 {
		base.Analysis = "no recent card-present transactions with coordinates"
		base.Result = map[string]any{"risk_level": types.RiskLow, "applicable": false}
		return base
	}

	alertLat, alertLon := *in.Alert.Latitude, *in.Alert.Longitude
	at := in.Alert.TransactionTimestamp

	legs := make([]travelLeg, 0, len(geoTxs))
	minFeasibility := -1.0
	impossible := false
	for _, tx := range geoTxs {
		dist := haversineKm(*tx.Latitude, *tx.Longitude, alertLat, alertLon)
		gap := minutesBetween(tx.Timestamp, at)
		minTravel := dist / assumedTravelSpeedKmh * 60

		feasibility := 1.0
		if minTravel > 0 {
			feasibility = gap / minTravel
		}
		if dist > 10 && gap < minTravel {
			impossible = true
		}
		if minFeasibility < 0 || feasibility < minFeasibility {
			minFeasibility = feasibility
		}
		legs = append(legs, travelLeg{
			TransactionID: tx.TransactionID,
			DistanceKm:    round2(dist),
			GapMinutes:    round2(gap),
			MinTravelMin:  round2(minTravel),
			Feasibility:   round2(feasibility),
		})
	}

	risk := types.RiskLow
	analysis := "all recent locations are reachable in the elapsed time"
	switch {
	case impossible:
		risk = types.RiskHigh
		analysis = "impossible travel: location unreachable from a recent card-present transaction"
	case minFeasibility >= 0 && minFeasibility < 0.5:
		risk = types.RiskHigh
		analysis = fmt.Sprintf("travel would require over twice the available time (feasibility %.2f)", minFeasibility)
	case minFeasibility >= 0 && minFeasibility < 1.0:
		risk = types.RiskMedium
		analysis = fmt.Sprintf("travel is tight for the elapsed time (feasibility %.2f)", minFeasibility)
	}

	base.Result = map[string]any{
		"applicable":        true,
		"legs":              legs,
		"min_feasibility":   round2(minFeasibility),
		"impossible_travel": impossible,
		"risk_level":        risk,
	}
	base.Analysis = analysis
	return base
}
