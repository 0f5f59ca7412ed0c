package freight

import (
	"context"
	"fmt"

	"github.com/comexar/despacho/internal/common"
)

// Shipment describes the cargo to quote.
type Shipment struct {
	OriginCountry string
	WeightKG      float64
	VolumeM3      float64
}

// Quote is one carrier's answer.
type Quote struct {
	Carrier     string
	Service     string
	CostUSD     float64
	TransitDays int
}

// Carrier quotes a shipment. Implementations return an error wrapping
// common.ErrCarrierUnavailable when the carrier cannot answer, so callers
// can keep shopping the rest.
type Carrier interface {
	Name() string
	Quote(ctx context.Context, s Shipment) (Quote, error)
}

// tableCarrier quotes from the built-in rate table, air or sea depending
// on which dimension the shipment carries.
type tableCarrier struct{}

// NewTableCarrier returns the offline estimator backed by the rate table.
func NewTableCarrier() Carrier {
	return tableCarrier{}
}

func (tableCarrier) Name() string { return "rate-table" }

func (tableCarrier) Quote(_ context.Context, s Shipment) (Quote, error) {
	if s.VolumeM3 > 0 {
		cost, err := EstimateSea(s.VolumeM3)
		if err != nil {
			return Quote{}, err
		}
		return Quote{Carrier: "rate-table", Service: "sea-lcl", CostUSD: cost, TransitDays: 35}, nil
	}

	cost, err := EstimateAir(s.WeightKG)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Carrier: "rate-table", Service: "air-courier", CostUSD: cost, TransitDays: 7}, nil
}

// Cheapest shops a shipment across carriers and returns the lowest quote.
// Unavailable carriers are skipped; if nobody answers the error wraps
// common.ErrNoQuotes.
func Cheapest(ctx context.Context, carriers []Carrier, s Shipment) (Quote, error) {
	var (
		best  Quote
		found bool
	)

	for _, c := range carriers {
		if err := ctx.Err(); err != nil {
			return Quote{}, err
		}

		quote, err := c.Quote(ctx, s)
		if err != nil {
			continue
		}
		if !found || quote.CostUSD < best.CostUSD {
			best = quote
			found = true
		}
	}

	if !found {
		return Quote{}, fmt.Errorf("no carrier could quote the shipment: %w", common.ErrNoQuotes)
	}
	return best, nil
}
