// Package freight estimates international shipping cost to Argentina, from
// a built-in rate table or live courier quotes.
package freight

import (
	"fmt"
	"sort"
)

// airRateTable maps chargeable weight to door-to-door air courier cost in
// USD. Intermediate weights interpolate linearly between breakpoints.
var airRateTable = []struct {
	KG  float64
	USD float64
}{
	{0.5, 45},
	{1, 60},
	{2, 85},
	{5, 150},
	{10, 240},
	{20, 400},
	{50, 850},
	{100, 1500},
}

// SeaRatePerM3 is the consolidated LCL sea freight rate in USD.
const SeaRatePerM3 = 90.0

// seaMinimumUSD is the minimum charge for a sea shipment.
const seaMinimumUSD = 90.0

// EstimateAir interpolates the air rate table for a chargeable weight.
// Weights beyond the last breakpoint extrapolate at the marginal rate of
// the final segment.
func EstimateAir(weightKG float64) (float64, error) {
	if weightKG <= 0 {
		return 0, fmt.Errorf("weight must be positive, got %.2f", weightKG)
	}

	first := airRateTable[0]
	if weightKG <= first.KG {
		return first.USD, nil
	}

	i := sort.Search(len(airRateTable), func(i int) bool {
		return airRateTable[i].KG >= weightKG
	})
	if i == len(airRateTable) {
		last := airRateTable[len(airRateTable)-1]
		prev := airRateTable[len(airRateTable)-2]
		marginal := (last.USD - prev.USD) / (last.KG - prev.KG)
		return last.USD + (weightKG-last.KG)*marginal, nil
	}

	hi := airRateTable[i]
	if hi.KG == weightKG {
		return hi.USD, nil
	}
	lo := airRateTable[i-1]
	fraction := (weightKG - lo.KG) / (hi.KG - lo.KG)
	return lo.USD + fraction*(hi.USD-lo.USD), nil
}

// EstimateSea prices an LCL shipment by volume with a minimum charge.
func EstimateSea(volumeM3 float64) (float64, error) {
	if volumeM3 <= 0 {
		return 0, fmt.Errorf("volume must be positive, got %.3f", volumeM3)
	}
	cost := volumeM3 * SeaRatePerM3
	if cost < seaMinimumUSD {
		cost = seaMinimumUSD
	}
	return cost, nil
}
