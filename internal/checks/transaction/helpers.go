// Package transaction implements the transaction analysis checks: velocity,
// amount profiling, spending patterns, payment-method consistency, merchant
// and geographic risk, and time-of-day habits.
package transaction

import (
	"math"
	"sort"
	"time"

	"fraudlens/internal/checks"
	"fraudlens/internal/types"
)

const earthRadiusKm = 6371.0

// relevantHistory filters the input history to the configured lookback
// window ending at the alert timestamp, oldest first.
func relevantHistory(in checks.Input) []types.Transaction {
	cutoff := in.Alert.TransactionTimestamp.Add(-in.Analysis.Lookback())
	out := make([]types.Transaction, 0, len(in.History))
	for _, tx := range in.History {
		if tx.Timestamp.Before(cutoff) || tx.Timestamp.After(in.Alert.TransactionTimestamp) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func amounts(txs []types.Transaction) []float64 {
	out := make([]float64, len(txs))
	for i, tx := range txs {
		out[i] = tx.Amount
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	return percentile(vals, 50)
}

// stdev is the sample standard deviation.
func stdev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// percentile returns the p-th percentile using linear interpolation.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// percentileRank returns the share of values strictly below v, in [0, 100].
func percentileRank(vals []float64, v float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var below, equal int
	for _, x := range vals {
		switch {
		case x < v:
			below++
		case x == v:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(len(vals)) * 100
}

func zScore(v, m, sd float64) float64 {
	if sd == 0 {
		return 0
	}
	return (v - m) / sd
}

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// riskFromFactors maps a risk factor count to a level: two or more factors
// are HIGH, one is MEDIUM, none is LOW.
func riskFromFactors(n int) types.RiskLevel {
	switch {
	case n >= 2:
		return types.RiskHigh
	case n == 1:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// amountsMatch reports whether two amounts are equal within the configured
// relative tolerance. Differences under a paisa count as exact.
func amountsMatch(a, b, variability float64) bool {
	if math.Abs(a-b) < 0.01 {
		return true
	}
	if b == 0 {
		return false
	}
	return math.Abs(a-b)/b <= variability
}

// withPaymentMethod filters history to the given payment method.
func withPaymentMethod(txs []types.Transaction, method string) []types.Transaction {
	out := make([]types.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.PaymentMethod == method {
			out = append(out, tx)
		}
	}
	return out
}

// minutesBetween returns the gap between consecutive timestamps in minutes.
func minutesBetween(a, b time.Time) float64 {
	return math.Abs(b.Sub(a).Minutes())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
