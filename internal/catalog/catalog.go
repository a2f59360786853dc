package catalog

// STATIC REFERENCE DATA

// CabinType identifies one of the cabin models offered for investment.
type CabinType string

const (
	OneBedroom   CabinType = "1BR"
	TwoBedroom   CabinType = "2BR"
	ThreeBedroom CabinType = "3BR"
)

// Extra IDs used across the funnel and the calculators.
const (
	ExtraFurniture = "furniture"
	ExtraSolar     = "solar"
	ExtraHotTub    = "hot_tub"
	ExtraInsurance = "insurance"
	ExtraEVCharger = "ev_charger"
)

// Cabin holds the static commercial terms of one cabin model.
type Cabin struct {
	Type               CabinType `json:"type"`
	Name               string    `json:"name"`
	BasePrice          float64   `json:"base_price"`
	WeeklySiteFee      float64   `json:"weekly_site_fee"`
	DefaultNightlyRate float64   `json:"default_nightly_rate"`
	OffPeakRate        float64   `json:"off_peak_rate"`
	PeakRate           float64   `json:"peak_rate"`
}

// Extra is a purchasable add-on. NightlyImpact is the additive effect on
// the nightly rate; AnnualCostSavings is a yearly reduction in operating
// costs. Solar pricing depends on the cabin model, so extras are always
// resolved through a cabin type.
type Extra struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	NightlyImpact     float64 `json:"nightly_impact"`
	AnnualCostSavings float64 `json:"annual_cost_savings"`
}

// Catalog is the single authoritative source for cabin and extras data.
// It is built once at process start and read concurrently without locking.
type Catalog struct {
	cabins map[CabinType]Cabin
	order  []CabinType
	extras map[CabinType][]Extra
}

var solarPriceByCabin = map[CabinType]float64{
	OneBedroom:   20000,
	TwoBedroom:   30000,
	ThreeBedroom: 40000,
}

// Default returns the built-in catalog.
func Default() *Catalog {
	cabins := []Cabin{
		{
			Type:               OneBedroom,
			Name:               "One Bedroom Cabin",
			BasePrice:          110000,
			WeeklySiteFee:      100,
			DefaultNightlyRate: 160,
			OffPeakRate:        140,
			PeakRate:           195,
		},
		{
			Type:               TwoBedroom,
			Name:               "Two Bedroom Cabin",
			BasePrice:          145000,
			WeeklySiteFee:      120,
			DefaultNightlyRate: 210,
			OffPeakRate:        185,
			PeakRate:           250,
		},
		{
			Type:               ThreeBedroom,
			Name:               "Three Bedroom Cabin",
			BasePrice:          185000,
			WeeklySiteFee:      140,
			DefaultNightlyRate: 260,
			OffPeakRate:        230,
			PeakRate:           310,
		},
	}

	c := &Catalog{
		cabins: make(map[CabinType]Cabin, len(cabins)),
		extras: make(map[CabinType][]Extra, len(cabins)),
	}
	for _, cab := range cabins {
		c.cabins[cab.Type] = cab
		c.order = append(c.order, cab.Type)
		c.extras[cab.Type] = extrasFor(cab.Type)
	}
	return c
}

func extrasFor(t CabinType) []Extra {
	return []Extra{
		{ID: ExtraFurniture, Name: "Furniture Package", Price: 9500, NightlyImpact: 15},
		{ID: ExtraSolar, Name: "Solar & Battery", Price: solarPriceByCabin[t]},
		{ID: ExtraHotTub, Name: "Hot Tub", Price: 12000, NightlyImpact: 25},
		{ID: ExtraInsurance, Name: "Landlord Insurance", Price: 1200},
		{ID: ExtraEVCharger, Name: "EV Charger", Price: 3500, NightlyImpact: 5},
	}
}

// Cabin resolves a cabin model by type.
func (c *Catalog) Cabin(t CabinType) (Cabin, error) {
	cab, ok := c.cabins[t]
	if !ok {
		return Cabin{}, &ValidationError{Field: "cabin_type", Reason: "unknown cabin type: " + string(t)}
	}
	return cab, nil
}

// Cabins lists all cabin models in catalog order.
func (c *Catalog) Cabins() []Cabin {
	out := make([]Cabin, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.cabins[t])
	}
	return out
}

// ExtrasFor lists the extras available for a cabin model, with
// cabin-dependent pricing already applied.
func (c *Catalog) ExtrasFor(t CabinType) ([]Extra, error) {
	if _, ok := c.cabins[t]; !ok {
		return nil, &ValidationError{Field: "cabin_type", Reason: "unknown cabin type: " + string(t)}
	}
	extras := c.extras[t]
	out := make([]Extra, len(extras))
	copy(out, extras)
	return out, nil
}

// Extra resolves one extra for a cabin model.
func (c *Catalog) Extra(t CabinType, id string) (Extra, error) {
	extras, err := c.ExtrasFor(t)
	if err != nil {
		return Extra{}, err
	}
	for _, ex := range extras {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Extra{}, &ValidationError{Field: "extra_id", Reason: "unknown extra: " + id}
}
