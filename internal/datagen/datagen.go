// Package datagen produces realistic sample transaction data for demos and
// for exercising the investigation pipeline without a card network feed.
package datagen

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"fraudlens/internal/types"

	"github.com/google/uuid"
)

// categoryMCCs maps merchant categories to their card-network codes.
var categoryMCCs = map[string]string{
	"Grocery":       "5411",
	"Fuel":          "5541",
	"Electronics":   "5732",
	"Clothing":      "5651",
	"Restaurant":    "5812",
	"Travel":        "4511",
	"Healthcare":    "8011",
	"Entertainment": "7832",
	"Education":     "8299",
	"Utilities":     "4900",
}

// amountRanges gives the realistic INR spend band per category.
var amountRanges = map[string][2]float64{
	"Grocery":       {500, 3000},
	"Fuel":          {1000, 2000},
	"Electronics":   {2000, 50000},
	"Clothing":      {1000, 5000},
	"Restaurant":    {500, 3000},
	"Travel":        {5000, 50000},
	"Healthcare":    {1000, 10000},
	"Entertainment": {500, 2000},
	"Education":     {5000, 50000},
	"Utilities":     {1000, 5000},
}

var locations = []string{
	"Bandra", "Andheri", "Borivali", "Colaba", "Dadar",
	"Kurla", "Powai", "Vasai", "Thane", "Navi Mumbai",
}

type methodProfile struct {
	method   string
	subTypes []string
	pin      []bool
}

var methodProfiles = []methodProfile{
	{types.MethodCardPresent, []string{types.SubTypeMagStripe, types.SubTypeEMVChip, types.SubTypeTokenNFC}, []bool{true, false}},
	{types.MethodContactless, []string{types.SubTypeTapToPay, types.SubTypeMobileWallet}, []bool{false}},
	{types.MethodCardNotPresent, []string{types.SubTypeOnline}, []bool{false}},
}

func categories() []string {
	out := make([]string, 0, len(categoryMCCs))
	for c := range categoryMCCs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Generator produces sample transactions with deterministic output for a
// given seed.
type Generator struct {
	rng        *rand.Rand
	categories []string
}

// New creates a seeded generator.
func New(seed int64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		categories: categories(),
	}
}

// Generate produces perCustomer transactions per customer, walking
// backwards in time from base with realistic gaps, newest first.
func (g *Generator) Generate(numCustomers, perCustomer int, base time.Time) []types.Transaction {
	var out []types.Transaction
	for c := 1; c <= numCustomers; c++ {
		current := base
		for i := 1; i <= perCustomer; i++ {
			current = current.Add(-g.timeGap())
			out = append(out, g.transaction(c, i, current, 0))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// GenerateVelocityBurst produces rapid-fire transactions, one to five
// minutes apart, for exercising velocity rules.
func (g *Generator) GenerateVelocityBurst(numCustomers, perCustomer int, base time.Time) []types.Transaction {
	var out []types.Transaction
	for c := 1; c <= numCustomers; c++ {
		current := base
		for i := 1; i <= perCustomer; i++ {
			current = current.Add(-time.Duration(1+g.rng.Intn(5)) * time.Minute)
			out = append(out, g.transaction(c, i, current, 0))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// timeGap skews towards short gaps: most card activity clusters inside the
// same hour.
func (g *Generator) timeGap() time.Duration {
	if g.rng.Float64() < 0.8 {
		return time.Duration(1+g.rng.Intn(59)) * time.Minute
	}
	if g.rng.Float64() < 0.2 {
		return time.Duration(1+g.rng.Intn(23))*time.Hour +
			time.Duration(g.rng.Intn(60))*time.Minute
	}
	if g.rng.Float64() < 0.1 {
		return time.Duration(1+g.rng.Intn(6))*24*time.Hour +
			time.Duration(g.rng.Intn(24))*time.Hour +
			time.Duration(g.rng.Intn(60))*time.Minute
	}
	return time.Duration(7+g.rng.Intn(24))*24*time.Hour +
		time.Duration(g.rng.Intn(24))*time.Hour +
		time.Duration(g.rng.Intn(60))*time.Minute
}

func (g *Generator) transaction(customer, seq int, at time.Time, amount float64) types.Transaction {
	profile := methodProfiles[g.rng.Intn(len(methodProfiles))]
	subType := profile.subTypes[g.rng.Intn(len(profile.subTypes))]
	pin := profile.pin[g.rng.Intn(len(profile.pin))]

	category := g.categories[g.rng.Intn(len(g.categories))]
	if amount <= 0 {
		band := amountRanges[category]
		amount = round2(band[0] + g.rng.Float64()*(band[1]-band[0]))
	}

	t := types.Transaction{
		TransactionID:        fmt.Sprintf("tx_%d_%d", customer, seq),
		CustomerID:           fmt.Sprintf("cust_%d", customer),
		MerchantID:           g.merchantID(customer, category),
		Amount:               amount,
		Timestamp:            at,
		MerchantCategory:     category,
		MerchantCategoryCode: categoryMCCs[category],
		Location:             locations[g.rng.Intn(len(locations))],
		Country:              "IN",
		Currency:             "INR",
		PaymentMethod:        profile.method,
		PaymentSubType:       subType,
		PINVerified:          pin,
	}

	if subType == types.SubTypeTokenNFC || subType == types.SubTypeMobileWallet {
		t.DeviceID = fmt.Sprintf("device_%d", 1+g.rng.Intn(2))
	}
	if profile.method == types.MethodCardNotPresent {
		t.IPAddress = fmt.Sprintf("192.168.%d.%d", 1+g.rng.Intn(255), 1+g.rng.Intn(255))
	}
	if profile.method == types.MethodCardPresent || profile.method == types.MethodContactless {
		lat := round6(18.9 + g.rng.Float64()*0.3)
		lon := round6(72.8 + g.rng.Float64()*0.2)
		t.Latitude = &lat
		t.Longitude = &lon
	}
	return t
}

// merchantID returns one of the customer's three regular merchants for the
// category seventy percent of the time, a shared merchant otherwise.
func (g *Generator) merchantID(customer int, category string) string {
	if g.rng.Float64() < 0.7 {
		return fmt.Sprintf("merchant_%d_%s_%d", customer, category, 1+g.rng.Intn(3))
	}
	return fmt.Sprintf("merchant_%d", 1+g.rng.Intn(15))
}

// SampleAlert flags one of the customer's regular-looking transactions,
// useful for demonstrating a benign investigation.
func (g *Generator) SampleAlert(customerID string, amount float64, at time.Time) types.Alert {
	customer := 1
	fmt.Sscanf(customerID, "cust_%d", &customer)
	tx := g.transaction(customer, 1, at, amount)
	return alertFrom(tx, customerID)
}

// AnomalousAlert builds a suspicious alert: a high value electronics
// purchase, card not present, no PIN, no geolocation.
func (g *Generator) AnomalousAlert(customerID string, at time.Time) types.Alert {
	return types.Alert{
		AlertID:              "alert_" + uuid.NewString(),
		CustomerID:           customerID,
		TransactionID:        fmt.Sprintf("tx_%s_anomaly", customerID),
		MerchantID:           fmt.Sprintf("merchant_%d", 1+g.rng.Intn(15)),
		TransactionAmount:    50000,
		TransactionTimestamp: at,
		MerchantCategory:     "Electronics",
		MerchantCategoryCode: categoryMCCs["Electronics"],
		Location:             "Unknown",
		Country:              "IN",
		Currency:             "INR",
		PaymentMethod:        types.MethodCardNotPresent,
		PaymentSubType:       types.SubTypeOnline,
		PINVerified:          false,
		IPAddress:            "192.168.1.1",
		CreatedAt:            at,
	}
}

func alertFrom(tx types.Transaction, customerID string) types.Alert {
	return types.Alert{
		AlertID:              "alert_" + uuid.NewString(),
		CustomerID:           customerID,
		TransactionID:        tx.TransactionID,
		MerchantID:           tx.MerchantID,
		TransactionAmount:    tx.Amount,
		TransactionTimestamp: tx.Timestamp,
		MerchantCategory:     tx.MerchantCategory,
		MerchantCategoryCode: tx.MerchantCategoryCode,
		Location:             tx.Location,
		Country:              tx.Country,
		Currency:             tx.Currency,
		PaymentMethod:        tx.PaymentMethod,
		PaymentSubType:       tx.PaymentSubType,
		PINVerified:          tx.PINVerified,
		DeviceID:             tx.DeviceID,
		IPAddress:            tx.IPAddress,
		Latitude:             tx.Latitude,
		Longitude:            tx.Longitude,
		CreatedAt:            tx.Timestamp,
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func round6(v float64) float64 {
	return float64(int64(v*1e6+0.5)) / 1e6
}
