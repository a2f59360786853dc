package roi

import (
	"fmt"

	"wildcabins/internal/catalog"
)

// PRICING / ROI ENGINE

const (
	managementFeeRate  = 0.20
	energyCostPerNight = 20.0
	minNightlyRate     = 50.0
	daysPerYear        = 365.0
	weeksPerYear       = 52.0
)

// Inputs is one calculation request. A zero NightlyRate means "use the
// catalog default rate for the cabin". ExtraIDs is treated as a set;
// duplicates are ignored.
type Inputs struct {
	CabinType        catalog.CabinType `json:"cabin_type"`
	OccupancyPercent float64           `json:"occupancy_percent"`
	NightlyRate      float64           `json:"nightly_rate"`
	ExtraIDs         []string          `json:"extra_ids"`
}

// Result is the derived annual projection for one set of inputs.
// All values are raw, unrounded dollars; rounding happens at display time.
type Result struct {
	DynamicNightlyRate float64 `json:"dynamic_nightly_rate"`
	GrossRevenue       float64 `json:"gross_revenue"`
	ManagementFee      float64 `json:"management_fee"`
	SiteFeeAnnual      float64 `json:"site_fee_annual"`
	TotalEnergyCosts   float64 `json:"total_energy_costs"`
	AnnualCostSavings  float64 `json:"annual_cost_savings"`
	NetIncome          float64 `json:"net_income"`
	ROI                float64 `json:"roi"`
	TotalInvestment    float64 `json:"total_investment"`
	ExtrasCost         float64 `json:"extras_cost"`
}

// Compute projects annual revenue, net income and ROI for a cabin with
// the selected extras. Pure and deterministic: same inputs, same outputs.
func Compute(cat *catalog.Catalog, in Inputs) (Result, error) {
	const operation = "roi.Compute"

	cab, err := cat.Cabin(in.CabinType)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", operation, err)
	}
	if in.OccupancyPercent < 0 || in.OccupancyPercent > 100 {
		return Result{}, &catalog.ValidationError{
			Field:  "occupancy_percent",
			Reason: fmt.Sprintf("must be between 0 and 100, got %v", in.OccupancyPercent),
		}
	}
	if in.NightlyRate < 0 {
		return Result{}, &catalog.ValidationError{
			Field:  "nightly_rate",
			Reason: fmt.Sprintf("must not be negative, got %v", in.NightlyRate),
		}
	}

	baseRate := in.NightlyRate
	if baseRate == 0 {
		baseRate = cab.DefaultNightlyRate
	}

	var (
		extrasCost  float64
		rateImpact  float64
		costSavings float64
		solar       bool
	)
	seen := make(map[string]bool, len(in.ExtraIDs))
	for _, id := range in.ExtraIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		ex, err := cat.Extra(in.CabinType, id)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", operation, err)
		}
		extrasCost += ex.Price
		rateImpact += ex.NightlyImpact
		costSavings += ex.AnnualCostSavings
		if ex.ID == catalog.ExtraSolar {
			solar = true
		}
	}

	// Hard business rule: the nightly rate never drops below $50.
	rate := baseRate + rateImpact
	if rate < minNightlyRate {
		rate = minNightlyRate
	}

	occupiedDays := in.OccupancyPercent / 100 * daysPerYear
	gross := occupiedDays * rate
	managementFee := managementFeeRate * gross
	siteFee := cab.WeeklySiteFee * weeksPerYear
	energy := occupiedDays * energyCostPerNight

	// Solar is modeled as eliminating energy costs entirely: the energy
	// line is subtracted below and added back here in full. Marketing copy
	// ("eliminates $X energy costs") depends on this exact treatment.
	if solar {
		costSavings += energy
	}

	net := gross - managementFee - siteFee - energy + costSavings
	total := cab.BasePrice + extrasCost

	return Result{
		DynamicNightlyRate: rate,
		GrossRevenue:       gross,
		ManagementFee:      managementFee,
		SiteFeeAnnual:      siteFee,
		TotalEnergyCosts:   energy,
		AnnualCostSavings:  costSavings,
		NetIncome:          net,
		ROI:                net / total * 100,
		TotalInvestment:    total,
		ExtrasCost:         extrasCost,
	}, nil
}
