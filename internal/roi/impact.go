package roi

import (
	"fmt"

	"wildcabins/internal/catalog"
)

// Delta is the marginal effect of selecting a single extra, computed
// against the same base inputs with no extras at all.
type Delta struct {
	ExtraID        string  `json:"extra_id"`
	ROIDelta       float64 `json:"roi_delta"`
	NetIncomeDelta float64 `json:"net_income_delta"`
	With           Result  `json:"with"`
	Without        Result  `json:"without"`
}

// ExtraImpact computes the ROI delta attributable to one extra. Both
// legs of the comparison use the occupancy and nightly rate from in;
// any extras already selected in in are ignored so the comparison stays
// a clean marginal one.
func ExtraImpact(cat *catalog.Catalog, in Inputs, extraID string) (Delta, error) {
	const operation = "roi.ExtraImpact"

	base := in
	base.ExtraIDs = nil
	without, err := Compute(cat, base)
	if err != nil {
		return Delta{}, fmt.Errorf("%s: %w", operation, err)
	}

	base.ExtraIDs = []string{extraID}
	with, err := Compute(cat, base)
	if err != nil {
		return Delta{}, fmt.Errorf("%s: %w", operation, err)
	}

	return Delta{
		ExtraID:        extraID,
		ROIDelta:       with.ROI - without.ROI,
		NetIncomeDelta: with.NetIncome - without.NetIncome,
		With:           with,
		Without:        without,
	}, nil
}
