// Package tax computes the Argentine import tax stack for a classified
// shipment: duty, statistical tax, VAT and its perception, income tax
// perception and provincial gross receipts, all over the CIF-derived base.
package tax

import (
	"fmt"
	"strings"

	"github.com/comexar/despacho/internal/model"
)

// Standard rates. VAT and the perceptions apply over the duty-inclusive
// base, not over CIF alone.
const (
	StatisticalRate      = 0.03
	StatisticalCapUSD    = 500.0
	VATGeneralRate       = 0.21
	VATReducedRate       = 0.105
	VATPerceptionRate    = 0.20
	IncomeRegisteredRate = 0.06
	IncomeUnregistered   = 0.11
	DefaultGrossReceipts = 0.025
)

// iibbRates carries the provincial gross receipts rates applied at import.
var iibbRates = map[string]float64{
	"caba":         0.025,
	"buenos aires": 0.025,
	"cordoba":      0.03,
	"santa fe":     0.025,
}

// Shipment is the cost input for one import operation. Values are USD.
type Shipment struct {
	FOB       float64
	Freight   float64
	Insurance float64

	// ReducedVAT applies the 10.5% rate for goods on the reduced lists.
	ReducedVAT bool
	// CapitalGood applies the reduced VAT rate and skips the VAT perception.
	CapitalGood bool
	// OwnUse skips the VAT perception, which only applies to resale.
	OwnUse bool
	// MercosurOrigin exempts the statistical tax.
	MercosurOrigin bool
	// ImporterRegistered selects the 6% income perception instead of 11%.
	ImporterRegistered bool
	// Province keys the gross receipts rate; unknown provinces get the
	// default rate.
	Province string
}

// CIF returns the customs value.
func (s Shipment) CIF() float64 {
	return s.FOB + s.Freight + s.Insurance
}

// Breakdown itemizes every tax over a shipment.
type Breakdown struct {
	CIF              float64
	Duty             float64
	SpecificDuty     float64
	Statistical      float64
	TaxBase          float64
	VAT              float64
	VATPerception    float64
	IncomePerception float64
	GrossReceipts    float64
	TotalTaxes       float64
	LandedCost       float64

	// Estimated marks results built from a pending duty treatment; the
	// duty line is a placeholder until the position is verified.
	Estimated bool
}

// Incidence is the total tax burden as a percentage of the CIF value.
func (b Breakdown) Incidence() float64 {
	if b.CIF == 0 {
		return 0
	}
	return b.TotalTaxes / b.CIF * 100
}

// Calculate itemizes the tax stack for a shipment under a resolved duty
// treatment.
func Calculate(s Shipment, duty model.DutyTreatment) (Breakdown, error) {
	if s.FOB < 0 || s.Freight < 0 || s.Insurance < 0 {
		return Breakdown{}, fmt.Errorf("shipment values must be non-negative")
	}
	cif := s.CIF()
	if cif == 0 {
		return Breakdown{}, fmt.Errorf("shipment has no customs value")
	}

	b := Breakdown{
		CIF:       cif,
		Estimated: duty.Pending,
	}

	b.Duty = cif * duty.DutyRate / 100
	b.SpecificDuty = duty.SpecificDuty

	if !s.MercosurOrigin {
		b.Statistical = cif * StatisticalRate
		if b.Statistical > StatisticalCapUSD {
			b.Statistical = StatisticalCapUSD
		}
	}

	b.TaxBase = cif + b.Duty + b.SpecificDuty + b.Statistical

	vatRate := VATGeneralRate
	if s.ReducedVAT || s.CapitalGood {
		vatRate = VATReducedRate
	}
	b.VAT = b.TaxBase * vatRate

	// The perception applies to registered importers bringing goods for
	// resale; own use and capital goods are outside it.
	if s.ImporterRegistered && !s.OwnUse && !s.CapitalGood {
		b.VATPerception = b.TaxBase * VATPerceptionRate
	}

	incomeRate := IncomeUnregistered
	if s.ImporterRegistered {
		incomeRate = IncomeRegisteredRate
	}
	b.IncomePerception = b.TaxBase * incomeRate

	b.GrossReceipts = b.TaxBase * grossReceiptsRate(s.Province)

	b.TotalTaxes = b.Duty + b.SpecificDuty + b.Statistical +
		b.VAT + b.VATPerception + b.IncomePerception + b.GrossReceipts
	b.LandedCost = cif + b.TotalTaxes

	return b, nil
}

func grossReceiptsRate(province string) float64 {
	if rate, ok := iibbRates[strings.ToLower(strings.TrimSpace(province))]; ok {
		return rate
	}
	return DefaultGrossReceipts
}
