package tax

import (
	"fmt"
)

// Courier regime limits (RG 5631/2025): per-shipment value and weight caps,
// plus a list of chapters barred from the simplified channel.
const (
	CourierMaxFOBUSD   = 3000.0
	CourierMaxWeightKG = 50.0
)

var courierExcludedChapters = map[int]struct{}{
	22: {}, 24: {}, 30: {},
	87: {}, 88: {}, 89: {},
	93: {},
}

// CourierEligibility reports whether a shipment fits the simplified courier
// channel, and why not when it doesn't.
type CourierEligibility struct {
	Eligible bool
	Reasons  []string
}

// CheckCourier evaluates the courier regime limits for a shipment of goods
// in the given chapter.
func CheckCourier(fobUSD, weightKG float64, chapter int) CourierEligibility {
	var reasons []string

	if fobUSD > CourierMaxFOBUSD {
		reasons = append(reasons, fmt.Sprintf("FOB value USD %.2f exceeds the USD %.0f courier limit", fobUSD, CourierMaxFOBUSD))
	}
	if weightKG > CourierMaxWeightKG {
		reasons = append(reasons, fmt.Sprintf("weight %.1f kg exceeds the %.0f kg courier limit", weightKG, CourierMaxWeightKG))
	}
	if _, excluded := courierExcludedChapters[chapter]; excluded {
		reasons = append(reasons, fmt.Sprintf("chapter %02d merchandise is excluded from the courier regime", chapter))
	}

	return CourierEligibility{
		Eligible: len(reasons) == 0,
		Reasons:  reasons,
	}
}
